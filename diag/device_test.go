package diag

import (
	"fmt"
	"time"

	"github.com/apmismail/switchtec-user/mrpc"
)

// call records one exchange issued to the mock device.
type call struct {
	cmd     mrpc.ID
	req     []byte
	respLen int
}

// reply scripts one exchange: resp is copied into the caller's buffer
// unless err is set.
type reply struct {
	resp []byte
	err  error
}

// mockDevice implements Device over a scripted reply list, recording every
// command it is asked to perform.
type mockDevice struct {
	gen     Generation
	calls   []call
	replies []reply
}

func (m *mockDevice) Command(cmd mrpc.ID, req, resp []byte) error {
	m.calls = append(m.calls, call{
		cmd:     cmd,
		req:     append([]byte(nil), req...),
		respLen: len(resp),
	})
	if len(m.replies) == 0 {
		return fmt.Errorf("unscripted command %#x", uint32(cmd))
	}
	r := m.replies[0]
	m.replies = m.replies[1:]
	if r.err != nil {
		return r.err
	}
	copy(resp, r.resp)
	return nil
}

func (m *mockDevice) Generation() Generation { return m.gen }

// testClient wraps New with sleeps recorded instead of slept.
func testClient(dev *mockDevice, opts ...Option) (*Client, *[]time.Duration) {
	c := New(dev, opts...)
	sleeps := new([]time.Duration)
	c.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	return c, sleeps
}
