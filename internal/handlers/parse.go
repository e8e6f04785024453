package handlers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	clockRx = regexp.MustCompile(`^([0-2]?[0-9]):([0-5][0-9])$`)
	monthRx = regexp.MustCompile(`^Расписание\s+(\d{2})\.(\d{2})$`)
)

// parseClock accepts "чч:мм" and rejects hours past 23.
func parseClock(s string) (hour, minute int, ok bool) {
	m := clockRx.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	if hour > 23 {
		return 0, 0, false
	}
	return hour, minute, true
}

// parseTimings reads "НП=1800, НПР=300, НПН=1800" into storage keys. Partial
// input is fine; an unknown key, a negative value, or an input with no values
// is not. The whole string is validated before anything is returned, so a bad
// entry anywhere means nothing gets applied.
func parseTimings(s string) (map[string]int, error) {
	updates := make(map[string]int)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, found := strings.Cut(part, "=")
		if !found {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("не число: %q", strings.TrimSpace(val))
		}
		if n < 0 {
			return nil, fmt.Errorf("отрицательное значение: %d", n)
		}
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "НП":
			updates["np"] = n
		case "НПР":
			updates["npr"] = n
		case "НПН":
			updates["npn"] = n
		default:
			return nil, fmt.Errorf("неизвестный ключ: %s", strings.TrimSpace(key))
		}
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("нет корректных значений")
	}
	return updates, nil
}

// parseMonth turns a "Расписание мм.гг" message into a "20гг-мм" storage key
// and the "мм.гг" display form.
func parseMonth(s string) (yearMonth, display string, ok bool) {
	m := monthRx.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", "", false
	}
	mm, _ := strconv.Atoi(m[1])
	if mm < 1 || mm > 12 {
		return "", "", false
	}
	return fmt.Sprintf("20%s-%s", m[2], m[1]), m[1] + "." + m[2], true
}

// displayDay renders a stored YYYY-MM-DD day as дд.мм.гг.
func displayDay(day string) string {
	parts := strings.Split(day, "-")
	if len(parts) != 3 {
		return day
	}
	return parts[2] + "." + parts[1] + "." + parts[0][2:]
}
