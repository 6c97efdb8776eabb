package batch

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/pickpool/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBackoff(t *testing.T) {
	_ = logger.Init()

	Convey("Given a writer with fixed jitter", t, func() {
		w := NewWriter(nil, WithBackoff(50*time.Millisecond, 100*time.Millisecond), WithJitter(func() time.Duration {
			return 7 * time.Millisecond
		}))

		Convey("Then the wait should be base*2^n plus jitter", func() {
			So(w.backoff(0), ShouldEqual, 57*time.Millisecond)
			So(w.backoff(1), ShouldEqual, 107*time.Millisecond)
			So(w.backoff(3), ShouldEqual, 407*time.Millisecond)
		})
	})

	Convey("Given the default jitter source", t, func() {
		w := NewWriter(nil)

		Convey("Then jitter should stay within [0, maxJitter]", func() {
			for i := 0; i < 1000; i++ {
				j := w.nextJitter()
				So(j, ShouldBeBetweenOrEqual, time.Duration(0), DefaultMaxJitter)
			}
			So(w.backoff(0), ShouldBeBetweenOrEqual, DefaultBaseWait, DefaultBaseWait+DefaultMaxJitter)
		})
	})

	Convey("Given a very large retry index", t, func() {
		w := NewWriter(nil, WithBackoff(time.Nanosecond, 0))

		Convey("Then the shift should be capped", func() {
			So(w.backoff(100), ShouldEqual, time.Duration(1<<maxBackoffShift))
		})
	})

	Convey("Given a base wait large enough to overflow when shifted", t, func() {
		w := NewWriter(nil, WithBackoff(10*time.Second, 0))

		Convey("Then late retries should saturate instead of going negative", func() {
			So(w.backoff(0), ShouldEqual, 10*time.Second)
			So(w.backoff(maxBackoffShift), ShouldEqual, maxWait)
			So(w.backoff(100), ShouldBeGreaterThan, time.Duration(0))
		})

		Convey("Then jitter on top of a saturated wait should not wrap", func() {
			jittery := NewWriter(nil, WithBackoff(10*time.Second, 0), WithJitter(func() time.Duration {
				return time.Second
			}))
			So(jittery.backoff(maxBackoffShift), ShouldEqual, maxWait)
			So(jittery.backoff(1), ShouldEqual, 21*time.Second)
		})
	})
}

func TestStateTransitions(t *testing.T) {
	Convey("Given the chunk state machine", t, func() {
		Convey("Then legal edges should be accepted", func() {
			So(canTransition(StatePending, StateSent), ShouldBeTrue)
			So(canTransition(StateSent, StateDone), ShouldBeTrue)
			So(canTransition(StateSent, StatePartialFailure), ShouldBeTrue)
			So(canTransition(StatePartialFailure, StateSent), ShouldBeTrue)
			So(canTransition(StatePartialFailure, StateAborted), ShouldBeTrue)
			So(canTransition(StatePending, StateAborted), ShouldBeTrue)
		})

		Convey("Then illegal edges should be rejected", func() {
			So(canTransition(StatePending, StateDone), ShouldBeFalse)
			So(canTransition(StateSent, StateSent), ShouldBeFalse)
			So(canTransition(StatePartialFailure, StateDone), ShouldBeFalse)
			So(canTransition(StateDone, StateSent), ShouldBeFalse)
			So(canTransition(StateAborted, StateAborted), ShouldBeFalse)
		})

		Convey("Then a chunk result should refuse an illegal move", func() {
			c := &ChunkResult{States: []State{StatePending}}
			So(c.transition(StateSent), ShouldBeNil)
			So(c.transition(StateDone), ShouldBeNil)
			So(errors.Is(c.transition(StateSent), ErrIllegalTransition), ShouldBeTrue)
			So(c.State(), ShouldEqual, StateDone)
			So(StatePartialFailure.String(), ShouldEqual, "partial_failure")
			So(State(42).String(), ShouldEqual, "unknown")
		})
	})
}
