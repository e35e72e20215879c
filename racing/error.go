// Copyright 2021 The appstatus Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package racing

import "errors"

// Redundant is the error reported for an upstream query which was
// abandoned because another source already reached a definitive
// outcome.
var Redundant = errors.New("appstatus/racing: redundant query")
