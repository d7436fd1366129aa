package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing auto-expiry.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock(t time.Time) *mockClock {
	return &mockClock{now: t}
}

func (m *mockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *mockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func TestError_Implements_Error(t *testing.T) {
	e := Error{
		Code:      ErrFetchFailed,
		Message:   "connection refused",
		Component: "prod-us-east-1",
		Timestamp: time.Now().UnixMilli(),
	}

	var err error = &e
	if err.Error() != "connection refused" {
		t.Fatalf("expected Error() = %q, got %q", "connection refused", err.Error())
	}
}

func TestConstructors(t *testing.T) {
	cause := fmt.Errorf("dial tcp 10.0.0.1:443: i/o timeout")

	tests := []struct {
		name string
		err  *Error
		code Code
	}{
		{"connection config", ConnectionConfig("ctx-a", cause), ErrConnectionConfig},
		{"fetch", Fetch("ctx-a", cause), ErrFetchFailed},
		{"quantity", QuantityParse("ctx-a", cause), ErrQuantityParse},
		{"unknown cluster", UnknownCluster("ctx-a"), ErrUnknownCluster},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Fatalf("Code = %s, want %s", tt.err.Code, tt.code)
			}
			if tt.err.Component != "ctx-a" {
				t.Fatalf("Component = %q, want ctx-a", tt.err.Component)
			}
			if tt.err.Timestamp == 0 {
				t.Fatal("Timestamp should be set")
			}
		})
	}

	if !stderrors.Is(Fetch("ctx-a", cause), cause) {
		t.Fatal("Fetch error should unwrap to its cause")
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("get nodes: %w", Fetch("ctx", stderrors.New("boom")))
	if got := CodeOf(wrapped); got != ErrFetchFailed {
		t.Fatalf("CodeOf(wrapped) = %s, want %s", got, ErrFetchFailed)
	}
	if got := CodeOf(stderrors.New("plain")); got != ErrInternal {
		t.Fatalf("CodeOf(plain) = %s, want %s", got, ErrInternal)
	}
	if e, ok := As(wrapped); !ok || e.Component != "ctx" {
		t.Fatalf("As(wrapped) = %v, %v", e, ok)
	}
}

func TestErrorCollector_Report(t *testing.T) {
	clk := newMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ec := NewErrorCollector(clk)

	ec.Report(Error{
		Code:      ErrFetchFailed,
		Message:   "connection refused",
		Component: "prod-us-east-1",
		Timestamp: clk.Now().UnixMilli(),
	})

	active := ec.GetActiveErrors()
	if len(active) != 1 {
		t.Fatalf("expected 1 active error, got %d", len(active))
	}
	if active[0].Code != ErrFetchFailed {
		t.Fatalf("expected code %s, got %s", ErrFetchFailed, active[0].Code)
	}
}

func TestErrorCollector_AutoExpiry(t *testing.T) {
	clk := newMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ec := NewErrorCollector(clk)

	ec.Report(Error{Code: ErrConnectionConfig, Message: "no kubeconfig", Component: "default"})

	// Advance 6 minutes, beyond the 5-minute TTL.
	clk.Advance(6 * time.Minute)

	if active := ec.GetActiveErrors(); len(active) != 0 {
		t.Fatalf("expected 0 active errors after expiry, got %d", len(active))
	}
	if ec.HasActive("default") {
		t.Fatal("expired error should not be active")
	}
}

func TestErrorCollector_RefreshPreventsExpiry(t *testing.T) {
	clk := newMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ec := NewErrorCollector(clk)

	e := Error{Code: ErrFetchFailed, Message: "timeout", Component: "staging"}
	ec.Report(e)

	clk.Advance(3 * time.Minute)
	ec.Report(e)

	// 6 minutes from the first report, 3 from the last.
	clk.Advance(3 * time.Minute)

	if active := ec.GetActiveErrors(); len(active) != 1 {
		t.Fatalf("expected 1 active error (refreshed), got %d", len(active))
	}
}

func TestErrorCollector_ResolveComponent(t *testing.T) {
	clk := newMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ec := NewErrorCollector(clk)

	ec.Report(Error{Code: ErrFetchFailed, Component: "a"})
	ec.Report(Error{Code: ErrQuantityParse, Component: "a"})
	ec.Report(Error{Code: ErrFetchFailed, Component: "b"})

	ec.ResolveComponent("a")

	if ec.HasActive("a") {
		t.Fatal("component a should have no active errors")
	}
	if !ec.HasActive("b") {
		t.Fatal("component b should still be active")
	}
}

func TestErrorCollector_ThreadSafe(t *testing.T) {
	clk := newMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ec := NewErrorCollector(clk)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			ec.Report(Error{
				Code:      Code(fmt.Sprintf("ERR_%d", idx%5)),
				Message:   fmt.Sprintf("error %d", idx),
				Component: "comp_" + strconv.Itoa(idx%3),
			})
			_ = ec.GetActiveErrors()
			_ = ec.GetActiveErrorCodes()
			_ = ec.HasActive("comp_0")
		}(i)
	}
	wg.Wait()

	if active := ec.GetActiveErrors(); len(active) == 0 {
		t.Fatal("expected some active errors after concurrent writes")
	}
}

func TestErrorCollector_GetActiveErrorCodes(t *testing.T) {
	clk := newMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ec := NewErrorCollector(clk)

	ec.Report(Error{Code: ErrFetchFailed, Component: "a"})
	ec.Report(Error{Code: ErrQuantityParse, Component: "a"})
	ec.Report(Error{Code: ErrConnectionConfig, Component: "b"})
	// Same code, different component: still one code.
	ec.Report(Error{Code: ErrFetchFailed, Component: "b"})

	codes := ec.GetActiveErrorCodes()
	want := []string{"CONNECTION_CONFIG", "FETCH_FAILED", "QUANTITY_PARSE"}
	if fmt.Sprint(codes) != fmt.Sprint(want) {
		t.Fatalf("codes = %v, want %v", codes, want)
	}
}

func TestErrorCollector_Clear(t *testing.T) {
	clk := newMockClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ec := NewErrorCollector(clk)

	ec.Report(Error{Code: ErrFetchFailed, Component: "a"})
	ec.Report(Error{Code: ErrConnectionConfig, Component: "b"})

	ec.Clear()

	if len(ec.GetActiveErrors()) != 0 {
		t.Fatal("expected 0 errors after Clear()")
	}
	if len(ec.GetActiveErrorCodes()) != 0 {
		t.Fatal("expected 0 error codes after Clear()")
	}
}
