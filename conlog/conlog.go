// SPDX-License-Identifier: GPL-2.0-or-later

// Package conlog routes user facing console output. Until a console is
// attached with SetPrintf everything goes to the standard logger.
package conlog

import (
	"log"
	"sync"
)

var (
	mutex sync.RWMutex
	p     = log.Printf
)

func SetPrintf(f func(string, ...interface{})) {
	mutex.Lock()
	defer mutex.Unlock()
	if f == nil {
		f = log.Printf
	}
	p = f
}

func Printf(format string, v ...interface{}) {
	mutex.RLock()
	f := p
	mutex.RUnlock()
	f(format, v...)
}
