package exception

import (
	"runtime/debug"

	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/monitoring"
)

// SafeGo runs fn on its own goroutine. A panic is logged with its stack and
// counted, and the goroutine exits without taking the process down. Deferred
// calls inside fn still run before the recovery.
func SafeGo(name string, fn func()) {
	go func() {
		defer recoverPanic(name)
		fn()
	}()
}

func recoverPanic(name string) {
	r := recover()
	if r == nil {
		return
	}
	monitoring.IncreasePanicCount()
	logx.Error("PANIC", "Panic in ", name, ": ", r, "\n", string(debug.Stack()))
}
