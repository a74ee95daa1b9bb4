package reddit

// Thing is the envelope Reddit wraps every object in.
type Thing[T any] struct {
	Kind string `json:"kind"`
	Data *T     `json:"data"`
}

type Listing struct {
	After    string        `json:"after"`
	Children []Thing[Post] `json:"children"`
}

type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
	CreatedUTC  float64 `json:"created_utc"`
	Ups         int64   `json:"ups"`
	NumComments int64   `json:"num_comments"`
	UpvoteRatio float64 `json:"upvote_ratio"`
}

type About struct {
	ID                string  `json:"id"`
	DisplayName       string  `json:"display_name"`
	Title             string  `json:"title"`
	PublicDescription string  `json:"public_description"`
	Subscribers       int64   `json:"subscribers"`
	CreatedUTC        float64 `json:"created_utc"`
}
