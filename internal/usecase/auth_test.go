package usecase

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/linkedleaders/platform-api/internal/core/domain"
)

func TestAuthEventDispatchPreservesOrder(t *testing.T) {
	svc := NewAuthService(nil, nil, nil, nil, nil, nil, zaptest.NewLogger(t))

	received := make(chan domain.AuthEventKind, 4)
	svc.Subscribe(func(event domain.AuthStateEvent) {
		received <- event.Kind
	})

	// A sign-out must never be overtaken by the sign-in that preceded it.
	svc.broadcast(domain.AuthStateEvent{Kind: domain.AuthEventSignedIn, UserID: "u-1", At: time.Now()})
	svc.broadcast(domain.AuthStateEvent{Kind: domain.AuthEventSignedOut, UserID: "u-1", At: time.Now()})

	for _, want := range []domain.AuthEventKind{domain.AuthEventSignedIn, domain.AuthEventSignedOut} {
		select {
		case got := <-received:
			if got != want {
				t.Fatalf("event kind = %s, want %s", got, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s event", want)
		}
	}
}

func TestAuthEventBroadcastDoesNotBlockEmitter(t *testing.T) {
	svc := NewAuthService(nil, nil, nil, nil, nil, nil, zaptest.NewLogger(t))

	release := make(chan struct{})
	svc.Subscribe(func(domain.AuthStateEvent) {
		<-release
	})
	defer close(release)

	done := make(chan struct{})
	go func() {
		svc.broadcast(domain.AuthStateEvent{Kind: domain.AuthEventSignedIn, UserID: "u-1", At: time.Now()})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("emitting an auth event blocked on a slow subscriber")
	}
}
