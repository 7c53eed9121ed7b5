// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package embedding

import (
	"context"
	"log/slog"
	"time"
)

// Backoff retries a failing operation, doubling the delay after each attempt.
type Backoff struct {
	// Attempts is the total number of tries, including the first (must be > 0).
	Attempts int
	// Delay is the wait after the first failure.
	Delay time.Duration
}

// Retry runs operation until it succeeds, attempts are exhausted or ctx is done.
// Returns the error from the last attempt if every attempt fails.
func (b Backoff) Retry(ctx context.Context, operation func() error) error {
	if b.Attempts <= 0 {
		return ErrInvalidAttempts
	}

	delay := b.Delay
	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = operation(); lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}
		if attempt == b.Attempts {
			return lastErr
		}

		slog.Debug("operation failed, will retry", "attempt", attempt, "attempts", b.Attempts, "delay", delay, "err", lastErr)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
