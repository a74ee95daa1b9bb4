package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"premise_fetcher/internal/domain"
	"premise_fetcher/internal/service/mocks"
	"premise_fetcher/testdata/utils"
)

type NicheServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	niches  *mocks.MockNicheStore
	service *NicheService
}

func (s *NicheServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.niches = mocks.NewMockNicheStore(s.ctrl)
	s.service = NewNicheService(s.niches)
}

func (s *NicheServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestNicheServiceTestSuite(t *testing.T) {
	suite.Run(t, new(NicheServiceTestSuite))
}

func (s *NicheServiceTestSuite) TestCreate_DedupsSubNichesInOrder() {
	ctx := context.Background()
	s.niches.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	n, err := s.service.Create(ctx, " Horror ", []string{"ghosts", "", "letters", "ghosts", " cabins "})

	s.Require().NoError(err)
	s.NotEmpty(n.ID)
	s.Equal("Horror", n.Name)
	s.Equal([]string{"ghosts", "letters", "cabins"}, n.SubNiches)
}

func (s *NicheServiceTestSuite) TestCreate_RequiresName() {
	_, err := s.service.Create(context.Background(), "  ", nil)

	s.ErrorIs(err, domain.ErrValidation)
}

func (s *NicheServiceTestSuite) TestCreate_Conflict() {
	ctx := context.Background()
	s.niches.EXPECT().Create(ctx, gomock.Any()).Return(domain.ErrConflict)

	_, err := s.service.Create(ctx, "Horror", nil)

	s.ErrorIs(err, domain.ErrConflict)
}

func (s *NicheServiceTestSuite) TestAddSubNiche() {
	ctx := context.Background()
	s.niches.EXPECT().Get(ctx, "n1").Return(&domain.Niche{ID: "n1", Name: "Horror", SubNiches: []string{"ghosts"}}, nil)
	s.niches.EXPECT().Update(ctx, gomock.Any()).Return(nil)

	n, err := s.service.AddSubNiche(ctx, "n1", "letters")

	s.Require().NoError(err)
	s.Equal([]string{"ghosts", "letters"}, n.SubNiches)
}

func (s *NicheServiceTestSuite) TestAddSubNiche_Duplicate() {
	ctx := context.Background()
	s.niches.EXPECT().Get(ctx, "n1").Return(&domain.Niche{ID: "n1", Name: "Horror", SubNiches: []string{"ghosts"}}, nil)

	_, err := s.service.AddSubNiche(ctx, "n1", "ghosts")

	s.ErrorIs(err, domain.ErrConflict)
}

func (s *NicheServiceTestSuite) TestUpdate_PartialFields() {
	ctx := context.Background()
	s.niches.EXPECT().Get(ctx, "n1").Return(&domain.Niche{ID: "n1", Name: "Horror", SubNiches: []string{"ghosts"}}, nil)
	s.niches.EXPECT().Update(ctx, gomock.Any()).Return(nil)

	n, err := s.service.Update(ctx, "n1", utils.Ptr("Terror"), nil)

	s.Require().NoError(err)
	s.Equal("Terror", n.Name)
	s.Equal([]string{"ghosts"}, n.SubNiches)
}

func (s *NicheServiceTestSuite) TestUpdate_EmptyNameRejected() {
	ctx := context.Background()
	s.niches.EXPECT().Get(ctx, "n1").Return(&domain.Niche{ID: "n1", Name: "Horror"}, nil)

	_, err := s.service.Update(ctx, "n1", utils.Ptr(""), nil)

	s.ErrorIs(err, domain.ErrValidation)
}
