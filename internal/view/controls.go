package view

import (
	"kaamkhojo-engine/internal/domain"
	"kaamkhojo-engine/internal/filter"
)

type Input string

const (
	InputSearch Input = "search"
	InputText   Input = "text"
	InputRadio  Input = "radio"
	InputSelect Input = "select"
)

type Option struct {
	Value string
	Label string
}

// Control is one filter widget. Each control edits exactly one key.
type Control struct {
	Key         filter.Key
	Label       string
	Input       Input
	Options     []Option
	Placeholder string
	// QuickPicks are one-click values offered next to a text input.
	QuickPicks []string
}

// Patch is the update this control produces when set to value.
func (c Control) Patch(value string) filter.Patch {
	return filter.Patch{c.Key: value}
}

var locationPicks = []string{"Delhi", "Mumbai", "Bengaluru", "Pune", "Hyderabad", "Remote"}

func keywordControl(placeholder string) Control {
	return Control{Key: filter.KeyKeyword, Label: "Keyword", Input: InputSearch, Placeholder: placeholder}
}

func locationControl() Control {
	return Control{
		Key: filter.KeyLocation, Label: "Location", Input: InputText,
		Placeholder: "City or state", QuickPicks: locationPicks,
	}
}

func categoryControl() Control {
	return Control{
		Key: filter.KeyCategory, Label: "Category", Input: InputRadio,
		Options: []Option{
			{string(filter.CategoryAll), "All"},
			{string(filter.CategoryWhiteCollar), "White collar"},
			{string(filter.CategoryBlueCollar), "Blue collar"},
		},
	}
}

func jobTypeControl() Control {
	return Control{
		Key: filter.KeyJobType, Label: "Job type", Input: InputRadio,
		Options: []Option{
			{string(filter.JobTypeAll), "All"},
			{string(filter.JobTypeFullTime), "Full-time"},
			{string(filter.JobTypePartTime), "Part-time"},
			{string(filter.JobTypeInternship), "Internship"},
			{string(filter.JobTypeContract), "Contract"},
		},
	}
}

func experienceControl() Control {
	return Control{
		Key: filter.KeyExperience, Label: "Experience", Input: InputSelect,
		Options: []Option{
			{string(filter.ExperienceAll), "Any experience"},
			{string(filter.ExperienceFresher), "Fresher"},
			{string(filter.Experience1to3), "1-3 years"},
			{string(filter.Experience3to5), "3-5 years"},
			{string(filter.Experience5to10), "5-10 years"},
			{string(filter.Experience10Plus), "10+ years"},
		},
	}
}

func salaryControl() Control {
	return Control{
		Key: filter.KeySalary, Label: "Salary", Input: InputSelect,
		Options: []Option{
			{string(filter.SalaryAll), "Any salary"},
			{string(filter.Salary0to3), "0-3 LPA"},
			{string(filter.Salary3to6), "3-6 LPA"},
			{string(filter.Salary6to10), "6-10 LPA"},
			{string(filter.Salary10Plus), "10+ LPA"},
		},
	}
}

// Controls returns the filter widgets shown on the screen for kind k.
func Controls(k domain.Kind) []Control {
	switch k {
	case domain.KindJob:
		return []Control{
			keywordControl("Title, company or skill"),
			locationControl(),
			categoryControl(),
			jobTypeControl(),
			experienceControl(),
			salaryControl(),
		}
	case domain.KindService:
		return []Control{keywordControl("Service or provider"), locationControl(), categoryControl()}
	case domain.KindFreelancer:
		return []Control{keywordControl("Skill or name"), locationControl(), categoryControl(), experienceControl()}
	case domain.KindArticle:
		return []Control{keywordControl("Headline, author or tag"), categoryControl()}
	}
	return nil
}
