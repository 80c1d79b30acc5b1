package combat

// Catalog is the ordered set of skills a combatant may use, plus the optional
// policy that decides its turns without external input.
//
// Invariant: skills and policy never change after construction.
type Catalog struct {
	skills []*Skill
	index  map[string]*Skill
	policy Policy
}

// NewCatalog creates a catalog for a player-controlled combatant.
//
// Postcondition: Policy() reports no policy.
func NewCatalog(skills ...*Skill) *Catalog {
	c := &Catalog{
		skills: make([]*Skill, 0, len(skills)),
		index:  make(map[string]*Skill, len(skills)),
	}
	for _, s := range skills {
		key := foldName(s.Name())
		if _, dup := c.index[key]; dup {
			continue
		}
		c.skills = append(c.skills, s)
		c.index[key] = s
	}
	return c
}

// NewAutonomousCatalog creates a catalog whose owner acts through policy.
//
// Precondition: policy must be non-nil.
// Postcondition: Policy() returns (policy, true).
func NewAutonomousCatalog(policy Policy, skills ...*Skill) *Catalog {
	c := NewCatalog(skills...)
	c.policy = policy
	return c
}

// Lookup finds a skill by case-insensitive name.
//
// Postcondition: Returns (skill, true) if found, or (nil, false).
func (c *Catalog) Lookup(name string) (*Skill, bool) {
	if c == nil {
		return nil, false
	}
	s, ok := c.index[foldName(name)]
	return s, ok
}

// Skills returns the skills in declaration order.
func (c *Catalog) Skills() []*Skill {
	if c == nil {
		return nil
	}
	out := make([]*Skill, len(c.skills))
	copy(out, c.skills)
	return out
}

// Policy returns the autonomous policy, or false for a player-controlled catalog.
func (c *Catalog) Policy() (Policy, bool) {
	if c == nil || c.policy == nil {
		return nil, false
	}
	return c.policy, true
}
