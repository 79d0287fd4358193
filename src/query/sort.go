package query

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/herry-chi/dashboard-operation-lifex/src/models"
	"github.com/herry-chi/dashboard-operation-lifex/src/utils"
)

// Sortable field names accepted from the API.
const (
	FieldDealName    = "deal_name"
	FieldBrokerName  = "broker_name"
	FieldDealValue   = "deal_value"
	FieldStatus      = "status"
	FieldSource      = "source"
	FieldProcessDays = "process_days"
	FieldLatestDate  = "latest_date"
	FieldCreatedTime = "created_time"
	FieldLostReason  = "lost_reason"
	FieldLostProcess = "lost_process"
	FieldLostDate    = "lost_date"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Key is one column of a multi-key sort.
type Key struct {
	Field     string
	Direction Direction
}

// ValidField reports whether the API accepts a sort field name.
func ValidField(field string) bool {
	switch field {
	case FieldDealName, FieldBrokerName, FieldDealValue, FieldStatus,
		FieldSource, FieldProcessDays, FieldLatestDate, FieldCreatedTime,
		FieldLostReason, FieldLostProcess, FieldLostDate:
		return true
	}
	return false
}

// Sort orders deals by the given keys, earlier keys taking precedence.
// The sort is stable and operates on a copy, so equal rows keep their
// relative input order and the input slice is untouched.
func Sort(deals []models.Deal, keys []Key) []models.Deal {
	out := make([]models.Deal, len(deals))
	copy(out, deals)
	if len(keys) == 0 {
		return out
	}

	coll := collate.New(language.English, collate.Loose)
	sort.SliceStable(out, func(i, j int) bool {
		for _, key := range keys {
			c := compareByField(coll, &out[i], &out[j], key.Field)
			if c == 0 {
				continue
			}
			if key.Direction == Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return out
}

func compareByField(coll *collate.Collator, a, b *models.Deal, field string) int {
	switch field {
	case FieldDealName:
		return coll.CompareString(a.Name, b.Name)
	case FieldBrokerName:
		return coll.CompareString(a.BrokerName, b.BrokerName)
	case FieldDealValue:
		return compareFloat(a.Value, b.Value)
	case FieldStatus:
		return compareInt(models.StageRank(a.DisplayStatus()), models.StageRank(b.DisplayStatus()))
	case FieldSource:
		return coll.CompareString(a.LeadSource(), b.LeadSource())
	case FieldProcessDays:
		return compareOptionalFloat(a.ProcessDays, b.ProcessDays)
	case FieldLatestDate:
		return compareDate(a.LatestDate, b.LatestDate)
	case FieldCreatedTime:
		return compareDate(a.CreatedTime, b.CreatedTime)
	case FieldLostReason:
		return coll.CompareString(a.LostReason, b.LostReason)
	case FieldLostProcess:
		return coll.CompareString(a.LostFromProcess, b.LostFromProcess)
	case FieldLostDate:
		return compareDate(a.LostDate, b.LostDate)
	}
	return 0
}

// Date columns order by parsed time. Missing or unparseable cells read
// as epoch zero, so they sort earliest ascending.
func compareDate(a, b string) int {
	return compareFloat(dateMillis(a), dateMillis(b))
}

func dateMillis(s string) float64 {
	t, ok := utils.ParseFlexibleDate(s)
	if !ok {
		return 0
	}
	return float64(t.UnixMilli())
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Missing process-day values sort after every present value.
func compareOptionalFloat(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return compareFloat(*a, *b)
}

// Toggle advances a single-column sort through the asc, desc, removed
// cycle. Clicking a different column starts it ascending and drops the
// rest.
func Toggle(keys []Key, field string) []Key {
	for _, k := range keys {
		if k.Field != field {
			continue
		}
		if k.Direction == Asc {
			return []Key{{Field: field, Direction: Desc}}
		}
		return nil
	}
	return []Key{{Field: field, Direction: Asc}}
}

// ToggleAppend is the multi-column variant. An already-present column
// cycles in place, a new column is appended ascending.
func ToggleAppend(keys []Key, field string) []Key {
	out := make([]Key, 0, len(keys)+1)
	found := false
	for _, k := range keys {
		if k.Field != field {
			out = append(out, k)
			continue
		}
		found = true
		if k.Direction == Asc {
			out = append(out, Key{Field: field, Direction: Desc})
		}
		// Desc drops the key from the chain.
	}
	if !found {
		out = append(out, Key{Field: field, Direction: Asc})
	}
	return out
}
