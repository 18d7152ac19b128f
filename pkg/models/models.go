package models

import "time"

// Domain models matching the database schema in db/migrations.

type RepairStatus string

const (
	StatusUrgent    RepairStatus = "urgent"
	StatusPriority  RepairStatus = "priority"
	StatusNonUrgent RepairStatus = "non-urgent"
)

// RepairStatuses lists the accepted statuses in severity order.
var RepairStatuses = []RepairStatus{StatusUrgent, StatusPriority, StatusNonUrgent}

func (s RepairStatus) Valid() bool {
	for _, v := range RepairStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type User struct {
	ID              string    `json:"id"`
	Email           *string   `json:"email"`
	FirstName       *string   `json:"firstName"`
	LastName        *string   `json:"lastName"`
	ProfileImageURL *string   `json:"profileImageUrl"`
	DateOfBirth     *string   `json:"dateOfBirth"`
	Phone           *string   `json:"phone"`
	Address         *string   `json:"address"`
	Unit            *string   `json:"unit"`
	KnowsOrganizer  bool      `json:"knowsOrganizer"`
	Threatened      bool      `json:"threatened"`
	EvictionCase    bool      `json:"evictionCase"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// UpsertUser carries the identity-provider view of a user. Nil fields are left
// untouched when the user already exists.
type UpsertUser struct {
	ID              string
	Email           *string
	FirstName       *string
	LastName        *string
	ProfileImageURL *string
	DateOfBirth     *string
	Phone           *string
	Address         *string
	Unit            *string
	KnowsOrganizer  *bool
	Threatened      *bool
	EvictionCase    *bool
}

// ProfileUpdate is a partial update of the tenancy context; nil means unchanged.
type ProfileUpdate struct {
	DateOfBirth    *string `json:"dateOfBirth,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
	Unit           *string `json:"unit,omitempty"`
	KnowsOrganizer *bool   `json:"knowsOrganizer,omitempty"`
	Threatened     *bool   `json:"threatened,omitempty"`
	EvictionCase   *bool   `json:"evictionCase,omitempty"`
}

type RepairIssue struct {
	ID                  int64        `json:"id"`
	UserID              string       `json:"userId"`
	RoomNumber          *int         `json:"roomNumber"`
	RoomName            string       `json:"roomName"`
	Area                string       `json:"area"`
	Status              RepairStatus `json:"status"`
	IssueDescription    string       `json:"issueDescription"`
	ProposedRemediation *string      `json:"proposedRemediation"`
	FirstRequestDate    *string      `json:"firstRequestDate"`
	IssueBegan          *string      `json:"issueBegan"`
	HPDViolationClass   *string      `json:"hpdViolationClass"`
	CorrectionDeadline  *string      `json:"correctionDeadline"`
	AIAnalysis          *string      `json:"aiAnalysis"`
	CreatedAt           time.Time    `json:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// Classified reports whether the classification fields have been populated.
func (r *RepairIssue) Classified() bool {
	return r.HPDViolationClass != nil || r.CorrectionDeadline != nil || r.AIAnalysis != nil
}

type NewRepairIssue struct {
	RoomNumber          *int         `json:"roomNumber,omitempty"`
	RoomName            string       `json:"roomName"`
	Area                string       `json:"area"`
	Status              RepairStatus `json:"status"`
	IssueDescription    string       `json:"issueDescription"`
	ProposedRemediation *string      `json:"proposedRemediation,omitempty"`
	FirstRequestDate    *string      `json:"firstRequestDate,omitempty"`
	IssueBegan          *string      `json:"issueBegan,omitempty"`
}

// Classification is the outcome of the violation classifier.
type Classification struct {
	ViolationClass string `json:"violationClass"`
	Deadline       string `json:"deadline"`
	Analysis       string `json:"analysis"`
}

type HarassmentReport struct {
	ID                int64            `json:"id"`
	UserID            string           `json:"userId"`
	HarassmentTypes   []HarassmentType `json:"harassmentTypes"`
	AdditionalDetails string           `json:"additionalDetails"`
	CreatedAt         time.Time        `json:"createdAt"`
}

type NewHarassmentReport struct {
	HarassmentTypes   []HarassmentType `json:"harassmentTypes"`
	AdditionalDetails string           `json:"additionalDetails"`
}
