package oauth

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFlowStore(t *testing.T) *FlowStore {
	t.Helper()
	s := NewFlowStore(nil)
	t.Cleanup(s.Stop)
	return s
}

func TestFlowStoreConsumeAuthorizationCode(t *testing.T) {
	s := newTestFlowStore(t)

	code := &AuthorizationCode{
		Code:        "code-1",
		ClientID:    "client-1",
		RedirectURI: "https://client.example.com/callback",
		Props:       &SessionProps{Login: "alice"},
		CreatedAt:   time.Now().Unix(),
	}
	require.NoError(t, s.SaveAuthorizationCode(code))

	got, err := s.ConsumeAuthorizationCode("code-1")
	require.NoError(t, err)
	assert.Equal(t, "client-1", got.ClientID)
	assert.Equal(t, "alice", got.Props.Login)

	// Consuming removes the code: a replay within the TTL must fail
	_, err = s.ConsumeAuthorizationCode("code-1")
	assert.Error(t, err)
}

func TestFlowStoreConsumeUnknownCode(t *testing.T) {
	s := newTestFlowStore(t)

	_, err := s.ConsumeAuthorizationCode("never-issued")
	assert.Error(t, err)
}

func TestFlowStoreConsumeIsExclusiveUnderContention(t *testing.T) {
	s := newTestFlowStore(t)

	const goroutines = 16

	for i := 0; i < 200; i++ {
		require.NoError(t, s.SaveAuthorizationCode(&AuthorizationCode{
			Code:      "contended-code",
			ClientID:  "client-1",
			Props:     &SessionProps{Login: "alice"},
			CreatedAt: time.Now().Unix(),
		}))

		var wg sync.WaitGroup
		var redeemed atomic.Int32
		for g := 0; g < goroutines; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.ConsumeAuthorizationCode("contended-code"); err == nil {
					redeemed.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), redeemed.Load(), "a code must redeem exactly once")
	}
}

func TestFlowStoreLen(t *testing.T) {
	s := newTestFlowStore(t)

	assert.Equal(t, 0, s.Len())

	require.NoError(t, s.SaveAuthorizationCode(&AuthorizationCode{Code: "a"}))
	require.NoError(t, s.SaveAuthorizationCode(&AuthorizationCode{Code: "b"}))
	assert.Equal(t, 2, s.Len())

	_, err := s.ConsumeAuthorizationCode("a")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}
