package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/votable/internal/model"
)

// --- モック ---

type mockEntityRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.Entity, error)
}

func (m *mockEntityRepo) FindByID(ctx context.Context, id string) (*model.Entity, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockEntityRepo) List(ctx context.Context) ([]*model.Entity, error) {
	return nil, nil
}
func (m *mockEntityRepo) CreateWithVotables(ctx context.Context, entity *model.Entity, votables []*model.Votable) error {
	return nil
}

type mockVotableRepo struct {
	votables []*model.Votable
}

func (m *mockVotableRepo) FindByID(ctx context.Context, id string) (*model.Votable, error) {
	return nil, nil
}
func (m *mockVotableRepo) ListByEntityID(ctx context.Context, entityID string) ([]*model.Votable, error) {
	return m.votables, nil
}
func (m *mockVotableRepo) ListByEntityIDWithUserVote(ctx context.Context, entityID, userID string) ([]model.VotableWithUserVote, error) {
	return nil, nil
}
func (m *mockVotableRepo) CreateBatch(ctx context.Context, votables []*model.Votable) error {
	return nil
}

type mockVoteRepo struct {
	votes   []*model.Vote
	listErr error
}

func (m *mockVoteRepo) FindByVotableAndUser(ctx context.Context, votableID, userID string) (*model.Vote, error) {
	return nil, nil
}
func (m *mockVoteRepo) Create(ctx context.Context, vote *model.Vote) error {
	return nil
}
func (m *mockVoteRepo) UpdateValue(ctx context.Context, vote *model.Vote) error {
	return nil
}
func (m *mockVoteRepo) ListByEntityID(ctx context.Context, entityID string) ([]*model.Vote, error) {
	return m.votes, m.listErr
}
func (m *mockVoteRepo) ListByEntityAndUser(ctx context.Context, entityID, userID string) ([]*model.Vote, error) {
	return nil, nil
}

type latencyRecorder struct {
	observed int
}

func (r *latencyRecorder) RecordVoteSubmitted(string) {}
func (r *latencyRecorder) RecordStatsLatency(time.Duration) { r.observed++ }
func (r *latencyRecorder) RecordUserCreated(string) {}
func (r *latencyRecorder) RecordEntityCreated(int) {}
func (r *latencyRecorder) RecordVotablesCreated(int) {}
func (r *latencyRecorder) RecordHTTPStatus(int) {}

func existingEntity() *mockEntityRepo {
	return &mockEntityRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Entity, error) {
			return &model.Entity{ID: id, Type: model.EntityTypePrompt, Title: "t"}, nil
		},
	}
}

// --- テスト ---

// TestComputeStats_EndToEnd は3と7の投票から平均5・中央値7・最小3・最大7・合計2になることを検証する。
func TestComputeStats_EndToEnd(t *testing.T) {
	entityID := uuid.NewString()
	votable := &model.Votable{ID: "v1", EntityID: entityID, Type: model.VotableTypeNumber, Config: model.NumberConfig{Min: 0, Max: 10}}
	rec := &latencyRecorder{}
	svc := NewService(
		existingEntity(),
		&mockVotableRepo{votables: []*model.Votable{votable}},
		&mockVoteRepo{votes: []*model.Vote{
			{VotableID: "v1", UserID: "u1", Value: "3"},
			{VotableID: "v1", UserID: "u2", Value: "7"},
		}},
		rec,
	)
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return now }

	got, err := svc.ComputeStats(context.Background(), entityID)
	if err != nil {
		t.Fatalf("ComputeStats returned error: %v", err)
	}

	if got.EntityID != entityID || !got.UpdatedAt.Equal(now) {
		t.Errorf("EntityID/UpdatedAt = %s/%v", got.EntityID, got.UpdatedAt)
	}
	s := got.VotableStats[0]
	if s.Average != 5 || s.Median != 7 || s.Min != 3 || s.Max != 7 || s.TotalVotes != 2 {
		t.Errorf("stats = %+v, want avg 5 median 7 min 3 max 7 total 2", s)
	}
	if rec.observed != 1 {
		t.Errorf("latency observed %d times, want 1", rec.observed)
	}
}

// TestComputeStats_EntityNotFound は存在しないエンティティでNotFoundになることを検証する。
func TestComputeStats_EntityNotFound(t *testing.T) {
	missing := &mockEntityRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Entity, error) { return nil, nil },
	}
	svc := NewService(missing, &mockVotableRepo{}, &mockVoteRepo{}, nil)

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		_, err := svc.ComputeStats(context.Background(), id)

		var apiErr *model.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("id %q: expected APIError, got %v", id, err)
		}
		if apiErr.Code != model.ErrCodeEntityNotFound {
			t.Errorf("id %q: code = %s, want %s", id, apiErr.Code, model.ErrCodeEntityNotFound)
		}
	}
}

// TestComputeStats_StoreError はストアのエラーがラップされて返ることを検証する。
func TestComputeStats_StoreError(t *testing.T) {
	storeErr := errors.New("timeout")
	svc := NewService(existingEntity(), &mockVotableRepo{}, &mockVoteRepo{listErr: storeErr}, nil)

	_, err := svc.ComputeStats(context.Background(), uuid.NewString())
	if !errors.Is(err, storeErr) {
		t.Fatalf("err = %v, want wrapped %v", err, storeErr)
	}
}

// TestComputeStats_NotCached は投票追加後の再計算に新しい投票が反映されることを検証する。
func TestComputeStats_NotCached(t *testing.T) {
	votable := &model.Votable{ID: "b1", Type: model.VotableTypeBool, Config: model.BoolConfig{}}
	voteRepo := &mockVoteRepo{votes: []*model.Vote{{VotableID: "b1", Value: "true"}}}
	svc := NewService(existingEntity(), &mockVotableRepo{votables: []*model.Votable{votable}}, voteRepo, nil)
	entityID := uuid.NewString()

	first, err := svc.ComputeStats(context.Background(), entityID)
	if err != nil {
		t.Fatal(err)
	}
	voteRepo.votes = append(voteRepo.votes, &model.Vote{VotableID: "b1", Value: "false"})
	second, err := svc.ComputeStats(context.Background(), entityID)
	if err != nil {
		t.Fatal(err)
	}

	if first.VotableStats[0].TotalVotes != 1 || second.VotableStats[0].TotalVotes != 2 {
		t.Errorf("totals = %d, %d; want 1, 2", first.VotableStats[0].TotalVotes, second.VotableStats[0].TotalVotes)
	}
}
