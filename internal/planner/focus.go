package planner

import "strings"

// Subject is one canonical entry of the subject taxonomy.
type Subject struct {
	Name     string
	Keywords []string
}

// Taxonomy maps free-text student signals onto canonical subjects. Order
// matters: hit lists are reported in this order, not input order.
var Taxonomy = []Subject{
	{"Mathematics", []string{"math", "algebra", "geometry", "calculus", "arithmetic", "statistics", "probability", "number theory", "trigonometry"}},
	{"Science", []string{"science", "biology", "physics", "chemistry", "laboratory", "astronomy", "ecology"}},
	{"English", []string{"english", "writing", "reading", "literature", "grammar", "vocabulary", "spelling", "poetry"}},
	{"History", []string{"history", "social studies", "geography", "civics", "government"}},
	{"Art", []string{"art", "creative", "drawing", "painting", "sculpture"}},
	{"Music", []string{"music", "choir", "instrument", "singing", "piano", "guitar"}},
	{"Physical Education", []string{"physical education", "sports", "fitness", "exercise", "athletics"}},
	{"Computer Science", []string{"computer", "programming", "coding", "software", "robotics"}},
	{"Foreign Languages", []string{"foreign language", "spanish", "french", "german", "mandarin", "japanese"}},
}

// CoreSubjects pad a focus set that came out shorter than MinFocusSubjects.
var CoreSubjects = []string{"Mathematics", "Science", "English"}

// MinFocusSubjects is the smallest focus set a plan is built from.
const MinFocusSubjects = 3

// FocusSubjectSet holds the per-category subject hits and the merged,
// prioritized focus list.
type FocusSubjectSet struct {
	Improvement []string
	Interest    []string
	Strength    []string
	Focus       []string
}

func (f FocusSubjectSet) IsImprovement(subject string) bool { return contains(f.Improvement, subject) }
func (f FocusSubjectSet) IsInterest(subject string) bool    { return contains(f.Interest, subject) }
func (f FocusSubjectSet) IsStrength(subject string) bool    { return contains(f.Strength, subject) }

// Resolve maps student signals onto canonical subjects. Focus is the
// union improvement > interest > strength, padded with CoreSubjects until
// it has at least MinFocusSubjects entries. A subject may appear in more
// than one category.
func Resolve(interests, strengths, improvementAreas []string) FocusSubjectSet {
	set := FocusSubjectSet{
		Improvement: MatchSubjects(improvementAreas),
		Interest:    MatchSubjects(interests),
		Strength:    MatchSubjects(strengths),
	}

	var focus []string
	for _, list := range [][]string{set.Improvement, set.Interest, set.Strength} {
		for _, s := range list {
			if !contains(focus, s) {
				focus = append(focus, s)
			}
		}
	}
	for _, s := range CoreSubjects {
		if len(focus) >= MinFocusSubjects {
			break
		}
		if !contains(focus, s) {
			focus = append(focus, s)
		}
	}
	set.Focus = focus
	return set
}

// MatchSubjects returns the taxonomy subjects hit by any term, in
// taxonomy order. A subject is hit when its lowercased name or one of its
// keywords is a substring of the lowercased term.
func MatchSubjects(terms []string) []string {
	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			lowered = append(lowered, t)
		}
	}

	var hits []string
	for _, subj := range Taxonomy {
		if hitsAny(subj, lowered) {
			hits = append(hits, subj.Name)
		}
	}
	return hits
}

// CanonicalSubject returns the taxonomy name for a free-text subject, or
// the trimmed input when nothing matches.
func CanonicalSubject(s string) string {
	hits := MatchSubjects([]string{s})
	if len(hits) == 0 {
		return strings.TrimSpace(s)
	}
	name := strings.ToLower(strings.TrimSpace(s))
	for _, h := range hits {
		if strings.ToLower(h) == name {
			return h
		}
	}
	return hits[0]
}

func hitsAny(subj Subject, terms []string) bool {
	name := strings.ToLower(subj.Name)
	for _, term := range terms {
		if strings.Contains(term, name) {
			return true
		}
		for _, kw := range subj.Keywords {
			if strings.Contains(term, kw) {
				return true
			}
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
