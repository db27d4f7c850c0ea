// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package grovelcd is a container for the drivers of the Grove RGB backlit
// character LCD module.
//
// The module is driven through grovelcd/grovelcd. The chip drivers live in
// aip31068 and sgm31323, both built on regbus. devfs and lcdsim provide
// alternative i2c.Bus implementations.
package grovelcd
