package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	timeLayout     = "15:04"
	minutesPerDay  = 24 * 60
	secondsSuffix  = ":00"
	maxTimeLength  = len("15:04:05")
	emptyTimeValue = ""
)

var (
	// ErrInvalidTimeString возвращается при некорректном формате времени
	ErrInvalidTimeString = errors.New("invalid time string format")

	// ErrTimeOutOfDay возвращается, когда результат арифметики выходит за пределы суток
	ErrTimeOutOfDay = errors.New("time is out of day bounds")
)

// TimeString время суток в формате HH:MM без привязки к дате
type TimeString string

// NewTimeString извлекает время суток из time.Time (секунды отбрасываются)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(timeLayout))
}

// NewTimeStringFromString парсит строку "HH:MM" (допускается "HH:MM:SS" из БД)
func NewTimeStringFromString(s string) (TimeString, error) {
	s = strings.TrimSpace(s)
	if len(s) == maxTimeLength && strings.HasSuffix(s, secondsSuffix) {
		s = strings.TrimSuffix(s, secondsSuffix)
	}

	parsed, err := time.Parse(timeLayout, s)
	if err != nil {
		return emptyTimeValue, fmt.Errorf("%w: %q", ErrInvalidTimeString, s)
	}

	return NewTimeString(parsed), nil
}

// NewTimeStringFromMinutes строит время суток из количества минут от полуночи
func NewTimeStringFromMinutes(minutes int) (TimeString, error) {
	if minutes < 0 || minutes >= minutesPerDay {
		return emptyTimeValue, fmt.Errorf("%w: %d minutes", ErrTimeOutOfDay, minutes)
	}
	return TimeString(fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)), nil
}

// MustTimeString для констант и тестов
func MustTimeString(s string) TimeString {
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return ts
}

func (t TimeString) String() string {
	return string(t)
}

func (t TimeString) IsZero() bool {
	return t == emptyTimeValue
}

// Validate проверяет формат HH:MM
func (t TimeString) Validate() error {
	if _, err := time.Parse(timeLayout, string(t)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return nil
}

// Minutes возвращает количество минут от полуночи; для некорректного значения -1
func (t TimeString) Minutes() int {
	parsed, err := time.Parse(timeLayout, string(t))
	if err != nil {
		return -1
	}
	return parsed.Hour()*60 + parsed.Minute()
}

// AddMinutes сдвигает время; результат обязан остаться в пределах суток
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	if err := t.Validate(); err != nil {
		return emptyTimeValue, err
	}
	return NewTimeStringFromMinutes(t.Minutes() + minutes)
}

func (t TimeString) IsBefore(other TimeString) bool {
	return t.Minutes() < other.Minutes()
}

func (t TimeString) IsAfter(other TimeString) bool {
	return t.Minutes() > other.Minutes()
}

func (t TimeString) Equal(other TimeString) bool {
	return t.Minutes() == other.Minutes()
}

// On совмещает время суток с датой в её часовом поясе
func (t TimeString) On(date time.Time) time.Time {
	m := t.Minutes()
	return time.Date(date.Year(), date.Month(), date.Day(), m/60, m%60, 0, 0, date.Location())
}

// Value реализует driver.Valuer для колонок типа TIME
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return string(t) + secondsSuffix, nil
}

// Scan реализует sql.Scanner; lib/pq отдает TIME как строку или []byte
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = emptyTimeValue
		return nil
	case string:
		parsed, err := NewTimeStringFromString(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		parsed, err := NewTimeStringFromString(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidTimeString, src)
	}
}
