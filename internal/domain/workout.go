// internal/domain/workout.go
package domain

// WorkoutType is a movement name from the fixed catalog.
type WorkoutType string

// Group ids.
const (
	GroupUpper      = "upper"
	GroupLower      = "lower"
	GroupPower      = "power"
	GroupCore       = "core"
	GroupBar        = "bar"
	GroupRecover    = "recover"
	GroupSupplement = "supplement"
)

// WorkoutOption is one pickable entry. Value is the form value, which differs
// from the stored WorkoutType for a few entries (e.g. "clean-power").
type WorkoutOption struct {
	Value       string      `json:"value"`
	Label       string      `json:"label"`
	WorkoutType WorkoutType `json:"workoutType"`
}

// WorkoutGroup is a labelled group of options.
type WorkoutGroup struct {
	ID    string          `json:"id"`
	Label string          `json:"label"`
	Emoji string          `json:"emoji"`
	Items []WorkoutOption `json:"items"`
}

// WorkoutGroups is the catalog. Stored type strings are part of the data format
// ("should press" included), so they must not be renamed.
var WorkoutGroups = []WorkoutGroup{
	{
		ID: GroupUpper, Label: "Upper", Emoji: "💪",
		Items: []WorkoutOption{
			{Value: "bench press", Label: "Bench press", WorkoutType: "bench press"},
			{Value: "should press", Label: "Shoulder press", WorkoutType: "should press"},
			{Value: "rear delt fly", Label: "Rear delt fly", WorkoutType: "rear delt fly"},
			{Value: "cable face pull", Label: "Cable face pull", WorkoutType: "cable face pull"},
		},
	},
	{
		ID: GroupLower, Label: "Lower", Emoji: "🦵",
		Items: []WorkoutOption{
			{Value: "squat", Label: "Squat", WorkoutType: "squat"},
			{Value: "single leg squat", Label: "Single leg squat", WorkoutType: "single leg squat"},
			{Value: "good morning", Label: "Good morning", WorkoutType: "good morning"},
			{Value: "calf raises", Label: "Calf raises", WorkoutType: "calf raises"},
			{Value: "calf raises (seated)", Label: "Calf raises (seated)", WorkoutType: "calf raises (seated)"},
		},
	},
	{
		ID: GroupPower, Label: "Power", Emoji: "⚡️",
		Items: []WorkoutOption{
			{Value: "hang clean", Label: "Hang clean", WorkoutType: "hang clean"},
			{Value: "clean-power", Label: "Clean", WorkoutType: "clean"},
			{Value: "hang snatch", Label: "Hang snatch", WorkoutType: "hang snatch"},
			{Value: "snatch", Label: "Snatch", WorkoutType: "snatch"},
		},
	},
	{
		ID: GroupCore, Label: "Core", Emoji: "🧘",
		Items: []WorkoutOption{
			{Value: "leg lifts", Label: "Leg lifts", WorkoutType: "leg lifts"},
			{Value: "plank", Label: "Plank", WorkoutType: "plank"},
			{Value: "toe touches", Label: "Toe touches", WorkoutType: "toe touches"},
			{Value: "bicycles", Label: "Bicycles", WorkoutType: "bicycles"},
		},
	},
	{
		ID: GroupBar, Label: "Bar", Emoji: "🤸",
		Items: []WorkoutOption{
			{Value: "pull up", Label: "Pull ups", WorkoutType: "pull up"},
			{Value: "true bubka", Label: "True bubka", WorkoutType: "true bubka"},
			{Value: "wipers", Label: "Wipers", WorkoutType: "wipers"},
			{Value: "down pressure", Label: "Down pressure", WorkoutType: "down pressure"},
		},
	},
	{
		ID: GroupRecover, Label: "Recover", Emoji: "♨️",
		Items: []WorkoutOption{
			{Value: "sauna", Label: "Sauna", WorkoutType: "sauna"},
		},
	},
	{
		ID: GroupSupplement, Label: "Supplement", Emoji: "🧪",
		Items: []WorkoutOption{
			{Value: "creatine", Label: "Creatine", WorkoutType: "creatine"},
			{Value: "protein", Label: "Protein", WorkoutType: "protein"},
		},
	},
}

var workoutTypes []WorkoutType

var (
	typeByValue    = map[string]WorkoutType{}
	valueByType    = map[WorkoutType]string{}
	groupIDByValue = map[string]string{}
	groupIDByType  = map[WorkoutType]string{}
)

func init() {
	for _, group := range WorkoutGroups {
		for _, item := range group.Items {
			if _, seen := groupIDByType[item.WorkoutType]; !seen {
				workoutTypes = append(workoutTypes, item.WorkoutType)
			}
			typeByValue[item.Value] = item.WorkoutType
			valueByType[item.WorkoutType] = item.Value
			groupIDByValue[item.Value] = group.ID
			groupIDByType[item.WorkoutType] = group.ID
		}
	}
}

// WorkoutTypes returns every catalog type in catalog order.
func WorkoutTypes() []WorkoutType {
	out := make([]WorkoutType, len(workoutTypes))
	copy(out, workoutTypes)
	return out
}

// IsKnownWorkoutType reports whether t is in the catalog.
func IsKnownWorkoutType(t WorkoutType) bool {
	_, ok := groupIDByType[t]
	return ok
}

// WorkoutValueToType maps a form value to its stored type.
func WorkoutValueToType(value string) (WorkoutType, bool) {
	t, ok := typeByValue[value]
	return t, ok
}

// WorkoutTypeToValue maps a stored type to its form value. Unknown types map to themselves.
func WorkoutTypeToValue(t WorkoutType) string {
	if t == "" {
		return ""
	}
	if v, ok := valueByType[t]; ok {
		return v
	}
	return string(t)
}

// GroupIDForType returns the group id of t, or "" if unknown.
func GroupIDForType(t WorkoutType) string {
	return groupIDByType[t]
}

// GroupIDForValue returns the group id of a form value, or "" if unknown.
func GroupIDForValue(value string) string {
	return groupIDByValue[value]
}

// GroupByID looks up a group.
func GroupByID(id string) (*WorkoutGroup, bool) {
	for i := range WorkoutGroups {
		if WorkoutGroups[i].ID == id {
			return &WorkoutGroups[i], true
		}
	}
	return nil, false
}

func IsRecoveryWorkout(t WorkoutType) bool {
	return GroupIDForType(t) == GroupRecover
}

func IsSupplementWorkout(t WorkoutType) bool {
	return GroupIDForType(t) == GroupSupplement
}
