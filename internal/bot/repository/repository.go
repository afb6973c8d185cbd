// Package repository is the sqlite persistence gateway: users, per-class
// day schedules and the bell schedule.
package repository

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/r1kuza/schoolbot/internal/bot/models"
)

// ClassCapacity is the registration cap per class.
const ClassCapacity = 30

// Field limits applied at the persistence boundary.
const (
	maxSubjectLen = 100
	maxTeacherLen = 50
	maxRoomLen    = 20
)

// Storage wraps a sql.DB with the school-bot schema.
type Storage struct {
	db *sql.DB
}

// New pings the database, creates the schema if missing and seeds the
// default bell schedule on first start.
func New(db *sql.DB) (*Storage, error) {
	s := &Storage{db: db}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}
	if err := s.seedBellSchedule(); err != nil {
		return nil, fmt.Errorf("seed bell schedule: %w", err)
	}
	return s, nil
}

func (s *Storage) createTables() error {
	const sqlstr = `
CREATE TABLE IF NOT EXISTS users (
  user_id INTEGER PRIMARY KEY,
  full_name TEXT NOT NULL,
  class TEXT NOT NULL,
  role TEXT DEFAULT 'user',
  registered_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS schedule (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  class TEXT NOT NULL,
  day TEXT NOT NULL,
  lesson_number INTEGER,
  subject TEXT,
  teacher TEXT,
  room TEXT,
  UNIQUE(class, day, lesson_number)
);

CREATE TABLE IF NOT EXISTS bell_schedule (
  lesson_number INTEGER PRIMARY KEY,
  start_time TEXT NOT NULL,
  end_time TEXT NOT NULL
);
`
	_, err := s.db.Exec(sqlstr)
	return err
}

func (s *Storage) seedBellSchedule() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM bell_schedule`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.BellSlot{
		{Number: 1, Start: "8:00", End: "8:40"},
		{Number: 2, Start: "8:50", End: "9:30"},
		{Number: 3, Start: "9:40", End: "10:20"},
		{Number: 4, Start: "10:30", End: "11:10"},
		{Number: 5, Start: "11:25", End: "12:05"},
		{Number: 6, Start: "12:10", End: "12:50"},
		{Number: 7, Start: "13:00", End: "13:40"},
	}
	for _, slot := range defaults {
		_, err := s.db.Exec(
			`INSERT INTO bell_schedule (lesson_number, start_time, end_time) VALUES (?, ?, ?)`,
			slot.Number, slot.Start, slot.End,
		)
		if err != nil {
			return err
		}
	}
	logrus.Info("Seeded default bell schedule")
	return nil
}

// Ping checks database liveness.
func (s *Storage) Ping() error {
	return s.db.Ping()
}

// GetUser returns the registered user or nil when not found.
func (s *Storage) GetUser(id int64) (*models.User, error) {
	if id <= 0 {
		return nil, nil
	}
	var u models.User
	err := s.db.QueryRow(
		`SELECT user_id, full_name, class, registered_at FROM users WHERE user_id = ?`, id,
	).Scan(&u.ID, &u.FullName, &u.Class, &u.RegisteredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

// CreateUser registers a user into a class. It returns false without error
// when the class is already at capacity.
func (s *Storage) CreateUser(id int64, fullName, class string) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE class = ?`, class).Scan(&count); err != nil {
		return false, fmt.Errorf("count class %s: %w", class, err)
	}
	if count >= ClassCapacity {
		logrus.Warnf("SECURITY: class_limit_exceeded - User: %d - Class: %s", id, class)
		return false, nil
	}
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO users (user_id, full_name, class) VALUES (?, ?, ?)`,
		id, fullName, class,
	)
	if err != nil {
		return false, fmt.Errorf("create user %d: %w", id, err)
	}
	return true, nil
}

// DeleteUser removes a user, reporting whether one existed.
func (s *Storage) DeleteUser(id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	res, err := s.db.Exec(`DELETE FROM users WHERE user_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteClass removes every user of a class, returning the count removed.
func (s *Storage) DeleteClass(class string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM users WHERE class = ?`, class)
	if err != nil {
		return 0, fmt.Errorf("delete class %s: %w", class, err)
	}
	return res.RowsAffected()
}

// ListUsers returns all users, most recently registered first.
func (s *Storage) ListUsers() ([]models.User, error) {
	rows, err := s.db.Query(
		`SELECT user_id, full_name, class, registered_at FROM users ORDER BY registered_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err = rows.Scan(&u.ID, &u.FullName, &u.Class, &u.RegisteredAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListDistinctClasses returns the classes that have at least one user.
func (s *Storage) ListDistinctClasses() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT class FROM users ORDER BY class`)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	defer rows.Close()

	var classes []string
	for rows.Next() {
		var class string
		if err = rows.Scan(&class); err != nil {
			return nil, err
		}
		classes = append(classes, class)
	}
	return classes, rows.Err()
}

// CountByClass returns the user count per class.
func (s *Storage) CountByClass() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT class, COUNT(*) FROM users GROUP BY class`)
	if err != nil {
		return nil, fmt.Errorf("count by class: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var class string
		var n int
		if err = rows.Scan(&class, &n); err != nil {
			return nil, err
		}
		counts[class] = n
	}
	return counts, rows.Err()
}

// GetSchedule returns the lessons of a class on a day, ordered by number.
func (s *Storage) GetSchedule(class, day string) ([]models.LessonRecord, error) {
	rows, err := s.db.Query(
		`SELECT lesson_number, subject, teacher, room FROM schedule
		 WHERE class = ? AND day = ? ORDER BY lesson_number`, class, day)
	if err != nil {
		return nil, fmt.Errorf("get schedule %s/%s: %w", class, day, err)
	}
	defer rows.Close()

	var lessons []models.LessonRecord
	for rows.Next() {
		l := models.LessonRecord{Class: class, Day: day}
		if err = rows.Scan(&l.Number, &l.Subject, &l.Teacher, &l.Room); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// ReplaceSchedule replaces all lessons of (class, day) with the given set
// in one transaction. An empty set clears the day.
func (s *Storage) ReplaceSchedule(class, day string, lessons []models.LessonRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace schedule: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.Exec(`DELETE FROM schedule WHERE class = ? AND day = ?`, class, day); err != nil {
		return fmt.Errorf("clear schedule %s/%s: %w", class, day, err)
	}
	for _, l := range lessons {
		_, err = tx.Exec(
			`INSERT OR REPLACE INTO schedule (class, day, lesson_number, subject, teacher, room)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			class, day, l.Number,
			truncate(l.Subject, maxSubjectLen),
			truncate(l.Teacher, maxTeacherLen),
			truncate(l.Room, maxRoomLen),
		)
		if err != nil {
			return fmt.Errorf("insert lesson %s/%s/%d: %w", class, day, l.Number, err)
		}
	}
	return tx.Commit()
}

// GetBellSlots returns the seven bell slots ordered by lesson number.
func (s *Storage) GetBellSlots() ([]models.BellSlot, error) {
	rows, err := s.db.Query(
		`SELECT lesson_number, start_time, end_time FROM bell_schedule ORDER BY lesson_number`)
	if err != nil {
		return nil, fmt.Errorf("get bell slots: %w", err)
	}
	defer rows.Close()

	var slots []models.BellSlot
	for rows.Next() {
		var slot models.BellSlot
		if err = rows.Scan(&slot.Number, &slot.Start, &slot.End); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

// UpdateBellSlot replaces the times of one slot; slots are never added
// or removed, so an unknown number reports false.
func (s *Storage) UpdateBellSlot(number int, start, end string) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE bell_schedule SET start_time = ?, end_time = ? WHERE lesson_number = ?`,
		start, end, number)
	if err != nil {
		return false, fmt.Errorf("update bell slot %d: %w", number, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
