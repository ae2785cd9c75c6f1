package model

import "github.com/google/uuid"

// assignID fills a missing primary key before insert. PostgreSQL also has a
// gen_random_uuid() default, SQLite does not.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
