// Copyright 2025 walteh LLC
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


package state

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 UserLogger provides user-friendly feedback about state changes
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
}

// 🎯 NewUserLogger creates a new user logger
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// 📊 LogStateChange logs a change to the overall state
func (u *UserLogger) LogStateChange(description string) {
	pterm.Debug.WithPrefix(pterm.Prefix{Text: "📦"}).Println(description)
	u.log.Debug().Msg(description)
}

// 🔒 LogLockOperation logs file locking operations
func (u *UserLogger) LogLockOperation(acquired bool, path string, err error) {
	if acquired {
		pterm.Debug.WithPrefix(pterm.Prefix{Text: "🔒"}).Printf("Acquired lock on %s\n", path)
		u.log.Debug().Msgf("Acquired lock on %s", path)
		return
	}
	if err != nil {
		pterm.Error.WithPrefix(pterm.Prefix{Text: "🔓"}).Printf("Failed to acquire lock on %s\n", path)
		u.log.Error().Err(err).Msgf("Failed to acquire lock on %s", path)
		return
	}
	pterm.Debug.WithPrefix(pterm.Prefix{Text: "🔓"}).Printf("Released lock on %s\n", path)
	u.log.Debug().Msgf("Released lock on %s", path)
}
