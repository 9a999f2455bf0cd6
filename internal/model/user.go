// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

package model

import "database/sql"

// User is a directory entry for an account that authors content
// versions. Account management itself lives elsewhere.
type User struct {
	ID         UserID
	ScreenName string
	AvatarURL  sql.NullString
}
