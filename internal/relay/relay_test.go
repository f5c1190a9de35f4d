package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CameronXie/pos-order-relay/internal/domain"
	"github.com/CameronXie/pos-order-relay/internal/events"
	"github.com/CameronXie/pos-order-relay/internal/upstream"
)

type mockOrderStore struct {
	mock.Mock
}

func (m *mockOrderStore) ApplyStatusChange(ctx context.Context, orderNumber string, change domain.StatusChange) (bool, error) {
	args := m.Called(ctx, orderNumber, change)
	return args.Bool(0), args.Error(1)
}

type mockUpstream struct {
	mock.Mock
}

func (m *mockUpstream) PostStatusUpdate(ctx context.Context, update domain.StatusUpdate) ([]byte, error) {
	args := m.Called(ctx, update)
	return bytesOrNil(args.Get(0)), args.Error(1)
}

func (m *mockUpstream) PostDispatch(ctx context.Context, dispatch domain.Dispatch) ([]byte, error) {
	args := m.Called(ctx, dispatch)
	return bytesOrNil(args.Get(0)), args.Error(1)
}

func (m *mockUpstream) PostCancel(ctx context.Context, cancellation domain.Cancellation) ([]byte, error) {
	args := m.Called(ctx, cancellation)
	return bytesOrNil(args.Get(0)), args.Error(1)
}

func bytesOrNil(v any) []byte {
	if v == nil {
		return nil
	}
	return v.([]byte)
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_UpdateStatus(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	testCases := map[string]struct {
		setupMocks      func(store *mockOrderStore, up *mockUpstream)
		expectedBody    string
		expectedErrType any
		expectedEvents  int
	}{
		"should write locally then relay upstream": {
			setupMocks: func(store *mockOrderStore, up *mockUpstream) {
				store.On("ApplyStatusChange", mock.Anything, "ORD-1", domain.StatusChange{
					Status:    "approved",
					UpdatedAt: &at,
					Notes:     "10 minutes",
				}).Return(true, nil).Once()
				up.On("PostStatusUpdate", mock.Anything, domain.StatusUpdate{
					OrderNumber: "ORD-1",
					Status:      "approved",
					Timestamp:   "2026-03-01T09:30:00Z",
					UpdatedBy:   DefaultActor,
					Notes:       "10 minutes",
				}).Return([]byte(`{"ok":true}`), nil).Once()
			},
			expectedBody:   `{"ok":true}`,
			expectedEvents: 1,
		},
		"should not call upstream when local write fails": {
			setupMocks: func(store *mockOrderStore, _ *mockUpstream) {
				store.On("ApplyStatusChange", mock.Anything, "ORD-1", mock.Anything).
					Return(false, errors.New("mongo down")).Once()
			},
			expectedErrType: &LocalWriteError{},
		},
		"should still relay when order is unknown locally": {
			setupMocks: func(store *mockOrderStore, up *mockUpstream) {
				store.On("ApplyStatusChange", mock.Anything, "ORD-1", mock.Anything).Return(false, nil).Once()
				up.On("PostStatusUpdate", mock.Anything, mock.Anything).Return([]byte(`{}`), nil).Once()
			},
			expectedBody: `{}`,
		},
		"should pass upstream status errors through": {
			setupMocks: func(store *mockOrderStore, up *mockUpstream) {
				store.On("ApplyStatusChange", mock.Anything, "ORD-1", mock.Anything).Return(true, nil).Once()
				up.On("PostStatusUpdate", mock.Anything, mock.Anything).
					Return(nil, &upstream.StatusError{StatusCode: http.StatusConflict, Body: []byte("bad state")}).Once()
			},
			expectedErrType: &upstream.StatusError{},
			expectedEvents:  1,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			store := new(mockOrderStore)
			up := new(mockUpstream)
			publisher := &recordingPublisher{}
			tc.setupMocks(store, up)

			svc := NewService(store, up, discardLogger(), WithPublisher(publisher))
			body, err := svc.UpdateStatus(context.Background(), domain.StatusUpdate{
				OrderNumber: "ORD-1",
				Status:      "approved",
				Timestamp:   "2026-03-01T09:30:00Z",
				Notes:       "10 minutes",
			})

			switch target := tc.expectedErrType.(type) {
			case *LocalWriteError:
				assert.ErrorAs(t, err, &target)
			case *upstream.StatusError:
				assert.ErrorAs(t, err, &target)
				assert.Equal(t, http.StatusConflict, target.StatusCode)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.expectedBody, string(body))
			}

			assert.Len(t, publisher.events, tc.expectedEvents)
			store.AssertExpectations(t)
			up.AssertExpectations(t)
		})
	}
}

func TestService_Dispatch(t *testing.T) {
	store := new(mockOrderStore)
	up := new(mockUpstream)

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.On("ApplyStatusChange", mock.Anything, "ORD-1", domain.StatusChange{
		Status:       domain.InternalStatusDispatched,
		DispatchedAt: &at,
	}).Return(true, nil).Once()
	up.On("PostDispatch", mock.Anything, domain.Dispatch{
		OrderNumber:  "ORD-1",
		Status:       domain.InternalStatusDispatched,
		Timestamp:    "2026-03-01T10:00:00Z",
		DispatchedBy: "rider-desk",
	}).Return([]byte(`{}`), nil).Once()

	svc := NewService(store, up, discardLogger())
	_, err := svc.Dispatch(context.Background(), domain.Dispatch{
		OrderNumber:  "ORD-1",
		Timestamp:    "2026-03-01T10:00:00Z",
		DispatchedBy: "rider-desk",
	})

	require.NoError(t, err)
	store.AssertExpectations(t)
	up.AssertExpectations(t)
}

func TestService_Cancel_UpstreamUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	at := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	store := new(mockOrderStore)
	store.On("ApplyStatusChange", mock.Anything, "ORD-1", domain.StatusChange{
		Status:       domain.InternalStatusCancelled,
		CancelledAt:  &at,
		CancelReason: "out of stock",
	}).Return(true, nil).Once()

	svc := NewService(store, upstream.NewClient(upstream.Config{BaseURL: url}), discardLogger())
	_, err := svc.Cancel(context.Background(), domain.Cancellation{
		OrderNumber:  "ORD-1",
		CancelledAt:  "2026-03-01T11:00:00Z",
		CancelReason: "out of stock",
	})

	var netErr *upstream.NetworkError
	assert.ErrorAs(t, err, &netErr)
	store.AssertExpectations(t)
}

func TestService_ParseTimestampFallsBackToClock(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService(new(mockOrderStore), new(mockUpstream), discardLogger(), WithClock(func() time.Time { return now }))

	testCases := map[string]struct {
		value    string
		expected time.Time
	}{
		"should parse RFC3339 with offset": {
			value:    "2026-03-01T14:00:00+02:00",
			expected: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		"should parse timestamp without zone as UTC": {
			value:    "2026-03-01T08:15:00",
			expected: time.Date(2026, 3, 1, 8, 15, 0, 0, time.UTC),
		},
		"should fall back to now for garbage": {
			value:    "yesterday",
			expected: now,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.True(t, tc.expected.Equal(svc.parseTimestamp(tc.value)))
		})
	}
}
