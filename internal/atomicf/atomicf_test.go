package atomicf

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAdd(t *testing.T) {
	Convey("When Add is called", t, func() {
		Convey("When multiple writers add to the float value concurrently", func() {
			f64 := float64(0.0)
			num_ops := 3000
			num_writers := 50

			start := make(chan struct{})
			wg := sync.WaitGroup{}
			wg.Add(num_writers)
			adder := func() {
				<-start
				for i := 0; i < num_ops; i++ {
					Add(&f64, 1.0)
				}
				wg.Done()
			}

			for i := 0; i < num_writers; i++ {
				go adder()
			}

			time.Sleep(time.Millisecond * 10)
			close(start)
			wg.Wait()
			So(Read(&f64), ShouldEqual, float64(num_ops*num_writers))
		})
	})
}

func TestSet(t *testing.T) {
	Convey("When Set is called", t, func() {
		f64 := float64(1.0)
		Set(&f64, 42.5)
		So(Read(&f64), ShouldEqual, 42.5)
	})
}
