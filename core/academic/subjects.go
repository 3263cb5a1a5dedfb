package academic

import "strings"

var (
	coreSubjects = map[Department][]string{
		DepartmentJHS:     {"English", "Mathematics", "Science", "Social Studies"},
		DepartmentScience: {"English", "Mathematics", "Biology", "Chemistry", "Physics", "Agriculture", "Geography"},
		DepartmentArts:    {"English", "Mathematics", "Literature", "History", "Geography", "Economics", "Civics"},
	}

	electiveSubjects = map[Department][]string{
		DepartmentJHS:     {"French", "Civics", "Agriculture", "Religious Education", "Physical Education", "Computer Studies", "Creative Arts"},
		DepartmentScience: {"French", "Civics", "Computer Studies", "Physical Education", "Further Mathematics", "Religious Education"},
		DepartmentArts:    {"French", "Computer Studies", "Physical Education", "Religious Education", "Government", "Accounting"},
	}

	// subjectAliases maps alternative subject names (lower-cased) to their canonical name.
	subjectAliases = map[string]string{
		"general science": "Science",
	}

	knownSubjects = indexKnownSubjects()
)

func indexKnownSubjects() map[string]string {
	idx := make(map[string]string)
	for _, lists := range []map[Department][]string{coreSubjects, electiveSubjects} {
		for _, subjects := range lists {
			for _, s := range subjects {
				idx[strings.ToLower(s)] = s
			}
		}
	}
	return idx
}

// CanonicalSubject resolves name to the name used by the subject tables.
// Unknown subjects are returned trimmed but otherwise untouched.
func CanonicalSubject(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	key := strings.ToLower(name)
	if alias, ok := subjectAliases[key]; ok {
		return alias
	}
	if known, ok := knownSubjects[key]; ok {
		return known
	}
	return name
}

// SameSubject reports whether a and b name the same subject.
func SameSubject(a, b string) bool {
	return strings.EqualFold(CanonicalSubject(a), CanonicalSubject(b))
}

// CoreSubjects returns the ordered core subjects of dept; an unknown department has none.
func CoreSubjects(dept Department) []string {
	subjects := coreSubjects[dept]
	out := make([]string, len(subjects))
	copy(out, subjects)
	return out
}

// IsCoreSubject reports whether subject is one of dept's core subjects.
func IsCoreSubject(dept Department, subject string) bool {
	for _, core := range coreSubjects[dept] {
		if SameSubject(core, subject) {
			return true
		}
	}
	return false
}

// Subjects returns every subject grades may be entered for in dept: core subjects first.
func Subjects(dept Department) []string {
	out := CoreSubjects(dept)
	return append(out, electiveSubjects[dept]...)
}

// IsDepartmentSubject reports whether grades may be entered for subject in dept.
func IsDepartmentSubject(dept Department, subject string) bool {
	for _, s := range Subjects(dept) {
		if SameSubject(s, subject) {
			return true
		}
	}
	return false
}
