package inmemdb

import (
	"sort"
	"strings"
	"sync"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/account"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/classroom"
	"github.com/trezcool/shule/core/course"
	"github.com/trezcool/shule/core/material"
)

type progressKey struct {
	studentID  int
	materialID int
}

type tables struct {
	seq        map[string]int
	courses    map[int]course.Course
	students   map[int]account.Student
	teachers   map[int]account.Teacher
	parents    map[int]account.Parent
	attendance map[int]attendance.Attendance
	recorded   map[int]classroom.RecordedClass
	live       map[int]classroom.LiveClass
	materials  map[int]material.StudyMaterial
	progress   map[progressKey]material.Progress
}

func newTables() *tables {
	return &tables{
		seq:        make(map[string]int),
		courses:    make(map[int]course.Course),
		students:   make(map[int]account.Student),
		teachers:   make(map[int]account.Teacher),
		parents:    make(map[int]account.Parent),
		attendance: make(map[int]attendance.Attendance),
		recorded:   make(map[int]classroom.RecordedClass),
		live:       make(map[int]classroom.LiveClass),
		materials:  make(map[int]material.StudyMaterial),
		progress:   make(map[progressKey]material.Progress),
	}
}

func (t *tables) nextID(table string) int {
	t.seq[table]++
	return t.seq[table]
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.seq {
		c.seq[k] = v
	}
	for k, v := range t.courses {
		c.courses[k] = v
	}
	for k, v := range t.students {
		c.students[k] = v
	}
	for k, v := range t.teachers {
		c.teachers[k] = v
	}
	for k, v := range t.parents {
		c.parents[k] = v
	}
	for k, v := range t.attendance {
		c.attendance[k] = v
	}
	for k, v := range t.recorded {
		c.recorded[k] = v
	}
	for k, v := range t.live {
		c.live[k] = v
	}
	for k, v := range t.materials {
		c.materials[k] = v
	}
	for k, v := range t.progress {
		c.progress[k] = v
	}
	return c
}

// DB is an in-memory database for tests and local runs without postgres.
// Transactions hold the write lock and work on a copy that is swapped in on commit.
type DB struct {
	mu   sync.RWMutex
	data *tables
}

func NewDB() *DB {
	return &DB{data: newTables()}
}

// Reset drops all data.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data = newTables()
}

// store gives repositories locked access to the tables, or direct access inside a transaction.
type store struct {
	db *DB
	tx *tables
}

func (s store) read(fn func(t *tables) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return fn(s.db.data)
}

func (s store) write(fn func(t *tables) error) error {
	if s.tx != nil {
		return fn(s.tx)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return fn(s.db.data)
}

func (s store) withinTx(fn func(s store) error) error {
	if s.tx != nil { // already in a transaction
		return fn(s)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	snapshot := s.db.data.clone()
	if err := fn(store{db: s.db, tx: snapshot}); err != nil {
		return err // rollback
	}
	s.db.data = snapshot
	return nil
}

// sortRows sorts rows (a slice) by orderings, then by ID ascending.
// field returns the value of a column for the row at index i; only int and string columns are supported.
func sortRows(rows interface{}, orderings []core.DBOrdering, field func(i int, name string) interface{}) {
	orderings = append(append([]core.DBOrdering{}, orderings...), core.DBOrdering{Field: "id", Ascending: true})
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range orderings {
			c := compare(field(i, ord.Field), field(j, ord.Field))
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func compare(a, b interface{}) int {
	switch av := a.(type) {
	case int:
		bv, _ := b.(int)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv, _ := b.(string)
		return strings.Compare(strings.ToLower(av), strings.ToLower(bv))
	}
	return 0
}
