package sqlite

import (
	"time"

	"github.com/tartampluch/go-encounter/internal/engine"
)

// Birthday is one row of the birthdays table.
type Birthday struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Date      string    `db:"date"`
	CreatedAt time.Time `db:"created_at"`
}

func NewBirthday(r engine.BirthdayRecord) Birthday {
	return Birthday{Name: r.Name, Date: r.Date}
}

func (b Birthday) Convert() engine.BirthdayRecord {
	return engine.BirthdayRecord{Name: b.Name, Date: b.Date}
}
