package degreed

import "encoding/json"

// CompletionPayload is the body of completion requests.
type CompletionPayload struct {
	OrgCode     string       `json:"orgCode"`
	Completions []Completion `json:"completions"`
}

// Completion is one learner's completion of one course. CompletionDate is
// omitted when withdrawing a completion.
type Completion struct {
	EmployeeID     string `json:"employeeId"`
	ID             string `json:"id"`
	CompletionDate string `json:"completionDate,omitempty"`
}

// ContentPayload is the body of course content create requests.
type ContentPayload struct {
	OrgCode      string   `json:"orgCode"`
	ProviderCode string   `json:"providerCode"`
	Courses      []Course `json:"courses"`
}

// Course describes one course in the provider catalog. Every key is sent;
// nil Authors and CategoryTags encode as empty arrays.
type Course struct {
	ContentID    string   `json:"contentId"`
	Authors      []string `json:"authors"`
	CategoryTags []string `json:"categoryTags"`
	URL          string   `json:"url"`
	ImageURL     string   `json:"imageUrl"`
	VideoURL     string   `json:"videoUrl"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Difficulty   string   `json:"difficulty"`
	Duration     int      `json:"duration"`
	PublishDate  string   `json:"publishDate"`
	Format       string   `json:"format"`
	Institution  string   `json:"institution"`
	CostType     string   `json:"costType"`
	Language     string   `json:"language"`
}

// MarshalJSON implements json.Marshaler.
func (c Course) MarshalJSON() ([]byte, error) {
	type course Course
	out := course(c)
	if out.Authors == nil {
		out.Authors = []string{}
	}
	if out.CategoryTags == nil {
		out.CategoryTags = []string{}
	}
	return json.Marshal(out)
}

// ContentDeletePayload is the body of course content delete requests.
type ContentDeletePayload struct {
	OrgCode      string            `json:"orgCode,omitempty"`
	ProviderCode string            `json:"providerCode,omitempty"`
	Courses      []CourseReference `json:"courses"`
}

// CourseReference names a course to remove from the catalog.
type CourseReference struct {
	ContentID string `json:"contentId"`
}
