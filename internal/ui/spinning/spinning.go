// Package spinning provides a friendly spinning clock (or some other spinning
// symbols) to display while the solver is thinking.
package spinning

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"k8s.io/klog/v2"
)

type Spinning struct {
	wg     sync.WaitGroup
	cancel func()
}

var (
	ThemeAscii = []rune("|/-\\")
	ThemeClock = []rune("🕐🕑🕒🕓🕔🕕🕖🕗🕘🕙🕚🕛")

	// Theme defaults to ThemeClock, but it can be set to anything else.
	Theme = ThemeClock
)

// SafeInterrupt will capture SigInt (Ctrl+C) and SigTerm and call the provided
// onInterrupt. If the program hasn't exited after gracePeriod, it will call
// Reset to restore the terminal and exit.
func SafeInterrupt(onInterrupt func(), gracePeriod time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigChan
		fmt.Println()
		klog.Errorf("Got interrupted (signal %q), shutting down... (%s)", s, gracePeriod)
		if onInterrupt != nil {
			go onInterrupt()
		}
		time.Sleep(gracePeriod)
		Reset()
		klog.Fatalf("Graceful shutting down %s period expired, exiting.", gracePeriod)
	}()
}

// Reset terminal: make cursor visible, restore default terminal colors.
func Reset() {
	fmt.Print("\033[?25h\033[39;49;0m\n")
}

// New starts a spinning display that runs on a separate goroutine.
// It stops when Spinning.Done is called or ctx is cancelled.
func New(ctx context.Context) *Spinning {
	ctx, cancel := context.WithCancel(ctx)
	s := &Spinning{cancel: cancel}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fmt.Print("\033[?25l") // Hide cursor.
		defer fmt.Print("\033[?25h \b")
		idx := 0
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			fmt.Printf("%c\b", Theme[idx])
			idx = (idx + 1) % len(Theme)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return s
}

// Done stops the spinner and waits for it to clear itself.
func (s *Spinning) Done() {
	s.cancel()
	s.wg.Wait()
}
