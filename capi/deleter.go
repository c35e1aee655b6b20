// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package main

/*
#include "torchbridge.h"

static void torch_call_deleter(TorchDeleter fn, void *ctx) {
	if (fn != NULL) {
		fn(ctx);
	}
}
*/
import "C"

import "unsafe"

// deleterFunc turns a C deleter and its context into a release hook.
func deleterFunc(fn C.TorchDeleter, ctx unsafe.Pointer) func() {
	if fn == nil {
		return nil
	}
	return func() { C.torch_call_deleter(fn, ctx) }
}
