package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mockprep/internal/evaluation"
	"github.com/abhisek/mockprep/internal/feedback"
	"github.com/abhisek/mockprep/internal/interview"
	"github.com/abhisek/mockprep/internal/selector"
)

const interviewAnswer = "I profiled the service, found the slow query and added an index. " +
	"Then I measured latency again and confirmed the fix. Finally, I documented the change for the team."

// The engine on top of SQLite behaves like it does on the in-memory store.
func TestEngineOnSQLite(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	repo := s.Questions()
	_, err := repo.SeedDefaultBank(ctx)
	require.NoError(t, err)

	sel := selector.New(repo, selector.WithSeed(3))
	t.Cleanup(sel.Wait)

	eng := interview.NewEngine(s.Sessions(), repo, sel,
		evaluation.New(evaluation.DefaultConfig(), nil),
		feedback.New(),
	)

	st, err := eng.StartSession(ctx, interview.StartRequest{
		User: "alice", Type: interview.SessionBehavioral, Difficulty: "all", Count: 2,
	})
	require.NoError(t, err)
	require.NotNil(t, st.First)
	assert.Equal(t, 1, st.First.Ordinal)
	assert.Equal(t, 4*time.Minute, st.First.Assignment.TimeLimit)

	p := st.First
	var last *interview.Submission
	for p != nil {
		last, err = eng.SubmitAnswer(ctx, interview.SubmitRequest{
			SessionID: st.Session.ID, User: "alice", AssignmentID: p.Assignment.ID,
			Text: interviewAnswer, TimeTaken: time.Minute,
		})
		require.NoError(t, err)
		p = last.Next
	}
	require.NotNil(t, last.Feedback)
	assert.False(t, last.HasMore)
	assert.Equal(t, interview.StatusCompleted, last.Session.Status)

	_, err = eng.SubmitAnswer(ctx, interview.SubmitRequest{
		SessionID: st.Session.ID, User: "alice", AssignmentID: st.First.Assignment.ID,
		Text: interviewAnswer,
	})
	assert.ErrorIs(t, err, interview.ErrSessionComplete)

	detail, err := eng.SessionDetail(ctx, st.Session.ID, "alice")
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
	for _, it := range detail.Items {
		require.NotNil(t, it.Answer)
		require.NotNil(t, it.Question)
		assert.Equal(t, it.Assignment.QuestionID, it.Question.ID)
	}
	require.NotNil(t, detail.Feedback)
	assert.Equal(t, last.Feedback.AverageScores, detail.Feedback.AverageScores)
	assert.Equal(t, &last.Feedback.AverageScores, detail.Session.AverageScores)

	page, err := eng.ListSessions(ctx, interview.ListRequest{User: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	// Usage counters are bumped asynchronously.
	sel.Wait()
	q, err := repo.Get(ctx, st.First.Question.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, q.UsageCount)

	require.NoError(t, eng.DeleteSession(ctx, st.Session.ID, "alice"))
	_, err = eng.SessionDetail(ctx, st.Session.ID, "alice")
	var nf *interview.NotFoundError
	assert.ErrorAs(t, err, &nf)
}
