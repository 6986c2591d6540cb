package bus

import "testing"

func TestEmitRegistrationOrder(t *testing.T) {
	b := New()
	var order []int
	b.Subscribe("ev", func(any) { order = append(order, 1) })
	b.Subscribe("ev", func(any) { order = append(order, 2) })
	b.Subscribe("ev", func(any) { order = append(order, 3) })

	b.Emit("ev", nil)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("handlers ran out of order: %v", order)
	}
}

func TestEmitPayloadDelivery(t *testing.T) {
	b := New()
	var got any
	b.Subscribe("ev", func(p any) { got = p })

	b.Emit("ev", Status{Message: "hi", Severity: SeverityInfo})

	st, ok := got.(Status)
	if !ok {
		t.Fatalf("payload type = %T, want Status", got)
	}
	if st.Message != "hi" {
		t.Errorf("Message = %q, want %q", st.Message, "hi")
	}
}

func TestEmitNoSubscribersIsNoop(t *testing.T) {
	b := New()
	b.Emit("nobody-listens", 42) // must not panic
}

func TestPanickingHandlerDoesNotStopOthers(t *testing.T) {
	b := New()
	var ran []string
	b.Subscribe("ev", func(any) { ran = append(ran, "a") })
	b.Subscribe("ev", func(any) { panic("boom") })
	b.Subscribe("ev", func(any) { ran = append(ran, "c") })

	b.Emit("ev", nil)

	if len(ran) != 2 || ran[0] != "a" || ran[1] != "c" {
		t.Errorf("surviving handlers = %v, want [a c]", ran)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	calls := 0
	tok := b.Subscribe("ev", func(any) { calls++ })

	b.Emit("ev", nil)
	b.Unsubscribe(tok)
	b.Emit("ev", nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestUnsubscribeIdempotent(t *testing.T) {
	b := New()
	tok := b.Subscribe("ev", func(any) {})
	keep := 0
	b.Subscribe("ev", func(any) { keep++ })

	b.Unsubscribe(tok)
	b.Unsubscribe(tok) // no-op
	b.Emit("ev", nil)

	if keep != 1 {
		t.Errorf("remaining handler ran %d times, want 1", keep)
	}
}

func TestUnsubscribeOneOfMany(t *testing.T) {
	b := New()
	var order []int
	b.Subscribe("ev", func(any) { order = append(order, 1) })
	tok := b.Subscribe("ev", func(any) { order = append(order, 2) })
	b.Subscribe("ev", func(any) { order = append(order, 3) })

	b.Unsubscribe(tok)
	b.Emit("ev", nil)

	if len(order) != 2 || order[0] != 1 || order[1] != 3 {
		t.Errorf("order = %v, want [1 3]", order)
	}
}

func TestNestedEmit(t *testing.T) {
	b := New()
	var seen []string
	b.Subscribe("inner", func(any) { seen = append(seen, "inner") })
	b.Subscribe("outer", func(any) {
		seen = append(seen, "outer")
		b.Emit("inner", nil)
	})

	b.Emit("outer", nil)

	if len(seen) != 2 || seen[0] != "outer" || seen[1] != "inner" {
		t.Errorf("seen = %v, want [outer inner]", seen)
	}
}

func TestSubscribeDuringEmitNotInvokedThisDispatch(t *testing.T) {
	b := New()
	late := 0
	b.Subscribe("ev", func(any) {
		b.Subscribe("ev", func(any) { late++ })
	})

	b.Emit("ev", nil)
	if late != 0 {
		t.Errorf("late handler ran during the emit that registered it")
	}

	b.Emit("ev", nil)
	if late != 1 {
		t.Errorf("late handler calls = %d, want 1", late)
	}
}
