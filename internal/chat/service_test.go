package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/intake"
	"loan-intake/internal/intake/oracle"
	"loan-intake/internal/models"
	"loan-intake/pkg/registry"
)

// ==========================
// Test Helper Functions
// ==========================

// script maps turn text to per-task canned oracle output, so a conversation
// can be scripted message by message.
type script map[string]map[string]string

func (s script) oracle() oracle.Oracle {
	return oracle.Func(func(_ context.Context, task registry.Task, text string) (string, error) {
		if byTask, ok := s[text]; ok {
			if answer, ok := byTask[task.Name]; ok {
				return answer, nil
			}
		}
		return "{}", nil
	})
}

type recordingListener struct {
	mu     sync.Mutex
	events []models.OfferEvent
	err    error
}

func (r *recordingListener) OfferIssued(_ context.Context, event models.OfferEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func newTestService(t *testing.T, s script, opts ...Option) *Service {
	engine := intake.NewEngine(registry.Default(), s.oracle(), intake.DefaultOffers(), logger.NewTestLogger(t))
	return NewService(engine, logger.NewTestLogger(t), opts...)
}

var conversation = script{
	"I want to buy in Hyderabad": {
		registry.TaskPersonalInfo: `{"city": "Hyderabad"}`,
	},
	"I'm salaried at Infosys, 12L a year, paid monthly": {
		registry.TaskIncomeType: `{"employment": "salaried"}`,
		registry.TaskSalaried:   `{"employer": "Infosys", "income": "12L", "mode": "monthly"}`,
	},
	"New flat from MyHome Constructions worth 80L": {
		registry.TaskPropertyType: `{"property_type": "new", "builder_name": "MyHome Constructions", "market_value": "80L"}`,
	},
	"Score is 720, no defaults ever": {
		registry.TaskCredit: `{"credit_score": 720, "has_defaults": false, "default_within_12_months": false}`,
	},
}

func converse(t *testing.T, svc *Service) *Reply {
	t.Helper()
	var last *Reply
	for _, msg := range []string{
		"I want to buy in Hyderabad",
		"I'm salaried at Infosys, 12L a year, paid monthly",
		"New flat from MyHome Constructions worth 80L",
		"Score is 720, no defaults ever",
	} {
		reply, err := svc.Send(context.Background(), msg)
		require.NoError(t, err)
		last = reply
	}
	return last
}

// ==========================
// Core Functionality Tests
// ==========================

func TestService_Send_Conversation(t *testing.T) {
	svc := newTestService(t, conversation)

	reply, err := svc.Send(context.Background(), "I want to buy in Hyderabad")
	require.NoError(t, err)
	assert.Equal(t, intake.PromptEmployment, reply.Reply)
	assert.Equal(t, "Hyderabad", reply.Application.City)
	assert.NotEmpty(t, reply.Panel)

	reply, err = svc.Send(context.Background(), "I'm salaried at Infosys, 12L a year, paid monthly")
	require.NoError(t, err)
	assert.Equal(t, intake.PromptPropertyType, reply.Reply)

	reply, err = svc.Send(context.Background(), "New flat from MyHome Constructions worth 80L")
	require.NoError(t, err)
	assert.Equal(t, intake.PromptCreditFirstAsk, reply.Reply)

	reply, err = svc.Send(context.Background(), "Score is 720, no defaults ever")
	require.NoError(t, err)
	assert.True(t, reply.Complete)
	assert.True(t, reply.OfferIssued)
	assert.Contains(t, reply.Reply, "Here's your loan offer")

	snap := svc.Snapshot()
	require.Len(t, snap.Transcript, 8)
	assert.Equal(t, models.SpeakerUser, snap.Transcript[0].Speaker)
	assert.Equal(t, models.SpeakerBot, snap.Transcript[7].Speaker)
	assert.Equal(t, reply.Reply, snap.Transcript[7].Text)
	assert.Equal(t, reply.ApplicationID, snap.ApplicationID)
	assert.Empty(t, svc.NextPrompt())
}

func TestService_Send_RejectsBlank(t *testing.T) {
	svc := newTestService(t, script{})

	for _, text := range []string{"", "   ", "\n\t"} {
		reply, err := svc.Send(context.Background(), text)
		assert.Nil(t, reply)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidTurnInput))
	}
	assert.Empty(t, svc.Snapshot().Transcript)
}

func TestService_Listeners(t *testing.T) {
	tests := []struct {
		name     string
		listener *recordingListener
	}{
		{name: "successful listener", listener: &recordingListener{}},
		{name: "failing listener does not fail the turn", listener: &recordingListener{err: errors.New("broker down")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			second := &recordingListener{}
			svc := newTestService(t, conversation, WithListeners(tt.listener, nil, second))

			reply := converse(t, svc)
			assert.True(t, reply.OfferIssued)

			// Later turns reply with the same offer but never re-fire.
			again, err := svc.Send(context.Background(), "thanks")
			require.NoError(t, err)
			assert.False(t, again.OfferIssued)
			assert.Equal(t, reply.Reply, again.Reply)

			for _, l := range []*recordingListener{tt.listener, second} {
				require.Len(t, l.events, 1)
				event := l.events[0]
				assert.Equal(t, reply.ApplicationID, event.ApplicationID)
				require.NotNil(t, event.Application.FinalOffer)
				assert.Equal(t, int64(4000000), event.Application.FinalOffer.Amount)
				assert.False(t, event.IssuedAt.IsZero())
			}
		})
	}
}

func TestService_ListenerFunc(t *testing.T) {
	var got string
	svc := newTestService(t, conversation, WithListeners(ListenerFunc(func(_ context.Context, e models.OfferEvent) error {
		got = e.Application.City
		return nil
	})))

	converse(t, svc)
	assert.Equal(t, "Hyderabad", got)
}

func TestService_Reset(t *testing.T) {
	svc := newTestService(t, conversation)
	converse(t, svc)
	before := svc.Snapshot()

	after := svc.Reset()
	assert.NotEqual(t, before.ApplicationID, after.ApplicationID)
	assert.Empty(t, after.Transcript)
	assert.Equal(t, &models.Application{}, after.Application)
	assert.Equal(t, intake.PromptCity, svc.NextPrompt())
}

func TestService_SnapshotIsACopy(t *testing.T) {
	svc := newTestService(t, conversation)
	_, err := svc.Send(context.Background(), "I want to buy in Hyderabad")
	require.NoError(t, err)

	snap := svc.Snapshot()
	snap.Application.City = "Chennai"
	snap.Transcript[0].Text = "edited"

	fresh := svc.Snapshot()
	assert.Equal(t, "Hyderabad", fresh.Application.City)
	assert.Equal(t, "I want to buy in Hyderabad", fresh.Transcript[0].Text)
}

func TestService_ConcurrentSends(t *testing.T) {
	svc := newTestService(t, script{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Send(context.Background(), "hello")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	transcript := svc.Snapshot().Transcript
	require.Len(t, transcript, 20)
	for i := 0; i < len(transcript); i += 2 {
		assert.Equal(t, models.SpeakerUser, transcript[i].Speaker)
		assert.Equal(t, models.SpeakerBot, transcript[i+1].Speaker)
	}
}
