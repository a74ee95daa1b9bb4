package domain

// Niche is a categorization label with an ordered list of sub-niches.
type Niche struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	SubNiches []string `json:"subNiches"`
}

// HasSubNiche reports whether name is already registered under the niche.
func (n *Niche) HasSubNiche(name string) bool {
	for _, s := range n.SubNiches {
		if s == name {
			return true
		}
	}
	return false
}
