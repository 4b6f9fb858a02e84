// Copyright (c) 2026 Gitident Team
// Gitident - Git identity manager
// This source code is licensed under the MIT license found in the LICENSE file.

package db

// MySQLStore is the MySQL implementation of the Store interface.
type MySQLStore struct {
	bunStore
}
