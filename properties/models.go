// Package properties is the game-property content surface: keyed upsert
// and read of attributes, skills, advantages, and disadvantages. Writes
// are gated on the tester privilege tier resolved by the auth core.
package properties

import "strings"

// Attribute is a character attribute definition.
type Attribute struct {
	ID          string `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Category    string `bson:"category" json:"category"`
	Description string `bson:"description" json:"description"`
}

// Skill is a character skill definition. Specialties arrive as a single
// comma-separated string and are stored as an array.
type Skill struct {
	ID                 string         `bson:"_id" json:"id"`
	Name               string         `bson:"name" json:"name"`
	Specialties        []string       `bson:"specialties" json:"specialties"`
	Untrained          bool           `bson:"untrained" json:"untrained"`
	PrimaryAttribute   string         `bson:"primary_attribute" json:"primary_attribute"`
	SecondaryAttribute map[string]any `bson:"secondary_attribute" json:"secondary_attribute"`
	Description        string         `bson:"description" json:"description"`
}

// SkillPayload is the wire shape of a skill submission.
type SkillPayload struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Specialties        string         `json:"specialties"`
	Untrained          bool           `json:"untrained"`
	PrimaryAttribute   string         `json:"primary_attribute"`
	SecondaryAttribute map[string]any `json:"secondary_attribute"`
	Description        string         `json:"description"`
}

// Skill converts the payload, splitting the specialties list.
func (p SkillPayload) Skill() Skill {
	var specialties []string
	if p.Specialties != "" {
		specialties = strings.Split(p.Specialties, ", ")
	}

	return Skill{
		ID:                 p.ID,
		Name:               p.Name,
		Specialties:        specialties,
		Untrained:          p.Untrained,
		PrimaryAttribute:   p.PrimaryAttribute,
		SecondaryAttribute: p.SecondaryAttribute,
		Description:        p.Description,
	}
}

// AdvantageDisadvantage is shared by the advantage and disadvantage
// collections.
type AdvantageDisadvantage struct {
	ID          string `bson:"_id" json:"id"`
	Name        string `bson:"name" json:"name"`
	Description string `bson:"description" json:"description"`
	KarmaCost   int    `bson:"karma_cost" json:"karma_cost"`
	Effect      string `bson:"effect" json:"effect"`
}
