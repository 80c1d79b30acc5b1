package content

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// class is a resolved template: its stats plus the catalog every instance shares.
type class struct {
	id      string
	name    string
	stats   combat.Stats
	catalog *combat.Catalog
}

// Library builds fresh combatants from validated content.
//
// Invariant: skills and catalogs are built once and shared by every combatant
// created from the same template.
type Library struct {
	skills  map[string]*combat.Skill
	players map[string]*class
	enemies map[string]*class
	// playerOrder keeps declaration order for listings.
	playerOrder []string
	enemyOrder  []string
}

// NewLibrary resolves files into a Library. caller runs unique_script and
// ai_script hooks and may be nil when no content uses them.
//
// Precondition: logger must not be nil.
// Postcondition: Returns a Library or an error naming every duplicate ID,
// unknown skill reference, or script hook without a caller.
func NewLibrary(files []*File, caller ai.ScriptCaller, logger *zap.Logger) (*Library, error) {
	lib := &Library{
		skills:  make(map[string]*combat.Skill),
		players: make(map[string]*class),
		enemies: make(map[string]*class),
	}
	var errs []string

	for _, f := range files {
		for _, def := range f.Skills {
			key := fold(def.ID)
			if _, dup := lib.skills[key]; dup {
				errs = append(errs, fmt.Sprintf("duplicate skill id %q", def.ID))
				continue
			}
			if def.UniqueScript != "" && caller == nil {
				errs = append(errs, fmt.Sprintf("skill %q: unique_script %q needs scripting enabled", def.ID, def.UniqueScript))
				continue
			}
			lib.skills[key] = buildSkill(def, caller, logger)
		}
	}

	for _, f := range files {
		for _, t := range f.Players {
			c, err := lib.buildClass(t)
			if err != nil {
				errs = append(errs, err.Error())
				continue
			}
			c.catalog = combat.NewCatalog(lib.resolveSkills(t)...)
			if err := lib.register(lib.players, &lib.playerOrder, c); err != nil {
				errs = append(errs, err.Error())
			}
		}
		for _, t := range f.Enemies {
			c, err := lib.buildClass(t)
			if err != nil {
				errs = append(errs, err.Error())
				continue
			}
			policy, err := lib.buildPolicy(t, caller, logger)
			if err != nil {
				errs = append(errs, err.Error())
				continue
			}
			c.catalog = combat.NewAutonomousCatalog(policy, lib.resolveSkills(t)...)
			if err := lib.register(lib.enemies, &lib.enemyOrder, c); err != nil {
				errs = append(errs, err.Error())
			}
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("content library invalid:\n  %s", strings.Join(errs, "\n  "))
	}
	if len(lib.players) == 0 {
		return nil, fmt.Errorf("content library invalid: no player classes defined")
	}
	logger.Info("content library ready",
		zap.Int("skills", len(lib.skills)),
		zap.Strings("players", lib.playerOrder),
		zap.Strings("enemies", lib.enemyOrder),
	)
	return lib, nil
}

func (lib *Library) buildClass(t *Template) (*class, error) {
	for _, id := range t.Skills {
		if _, ok := lib.skills[fold(id)]; !ok {
			return nil, fmt.Errorf("template %q: unknown skill %q", t.ID, id)
		}
	}
	// Catalog lookup is by folded display name, so two skills named alike would shadow each other.
	byName := make(map[string]string, len(t.Skills))
	for _, id := range t.Skills {
		name := lib.skills[fold(id)].Name()
		if prev, dup := byName[fold(name)]; dup {
			return nil, fmt.Errorf("template %q: skills %q and %q share the name %q", t.ID, prev, id, name)
		}
		byName[fold(name)] = id
	}
	return &class{id: t.ID, name: t.Name, stats: t.Stats.combat()}, nil
}

// resolveSkills maps a validated template's skill IDs to shared skills.
func (lib *Library) resolveSkills(t *Template) []*combat.Skill {
	out := make([]*combat.Skill, 0, len(t.Skills))
	for _, id := range t.Skills {
		out = append(out, lib.skills[fold(id)])
	}
	return out
}

func (lib *Library) buildPolicy(t *Template, caller ai.ScriptCaller, logger *zap.Logger) (combat.Policy, error) {
	attackID := t.AttackSkill
	if attackID == "" {
		attackID = t.Skills[0]
	}
	attack, ok := lib.skills[fold(attackID)]
	if !ok {
		return nil, fmt.Errorf("enemy %q: unknown attack_skill %q", t.ID, attackID)
	}
	fallback := combat.RandomAttacker{Skill: attack}
	if t.AIScript == "" {
		return fallback, nil
	}
	if caller == nil {
		return nil, fmt.Errorf("enemy %q: ai_script %q needs scripting enabled", t.ID, t.AIScript)
	}
	return ai.NewScriptedPolicy(caller, t.AIScript, fallback, logger.With(zap.String("enemy", t.ID))), nil
}

func (lib *Library) register(into map[string]*class, order *[]string, c *class) error {
	key := fold(c.id)
	if _, dup := into[key]; dup {
		return fmt.Errorf("duplicate template id %q", c.id)
	}
	into[key] = c
	*order = append(*order, c.id)
	return nil
}

// NewPlayer creates a fresh player-team combatant of class id.
//
// Postcondition: Returns (combatant, true) at full health, or (nil, false) for an unknown id.
func (lib *Library) NewPlayer(id string) (*combat.Combatant, bool) {
	c, ok := lib.players[fold(id)]
	if !ok {
		return nil, false
	}
	return combat.NewCombatant(c.name, combat.TeamPlayer, c.stats, c.catalog), true
}

// NewEnemy creates a fresh enemy-team combatant from template id.
//
// Postcondition: Returns (combatant, true) at full health, or (nil, false) for an unknown id.
func (lib *Library) NewEnemy(id string) (*combat.Combatant, bool) {
	c, ok := lib.enemies[fold(id)]
	if !ok {
		return nil, false
	}
	return combat.NewCombatant(c.name, combat.TeamEnemy, c.stats, c.catalog), true
}

// HasEnemy reports whether id names an enemy template.
func (lib *Library) HasEnemy(id string) bool {
	_, ok := lib.enemies[fold(id)]
	return ok
}

// PlayerIDs lists player class IDs in declaration order.
func (lib *Library) PlayerIDs() []string {
	out := make([]string, len(lib.playerOrder))
	copy(out, lib.playerOrder)
	return out
}

// EnemyIDs lists enemy template IDs in declaration order.
func (lib *Library) EnemyIDs() []string {
	out := make([]string, len(lib.enemyOrder))
	copy(out, lib.enemyOrder)
	return out
}

func buildSkill(def *SkillDef, caller ai.ScriptCaller, logger *zap.Logger) *combat.Skill {
	r, _ := ParseRange(def.Range)
	e, _ := ParseEffect(def.Effect)

	var opts []combat.SkillOption
	if def.Announce != "" {
		opts = append(opts, combat.WithAnnounce(announcer(def.Announce)))
	}
	switch {
	case def.Unique != "":
		opts = append(opts, combat.WithUnique(builtinUniques[def.Unique]))
	case def.UniqueScript != "":
		opts = append(opts, combat.WithUnique(ai.ScriptedEffect(caller, def.UniqueScript, logger.With(zap.String("skill", def.ID)))))
	}
	return combat.NewSkill(def.Name, def.Power, def.Accuracy, r, e, opts...)
}

// announcer renders an announce template with the actor and first target names.
func announcer(tmpl string) combat.EffectFunc {
	return func(ctx combat.EffectContext) {
		target := ""
		if len(ctx.Targets) > 0 {
			target = ctx.Targets[0].Name
		}
		ctx.Log.Write(strings.NewReplacer("{actor}", ctx.Actor.Name, "{target}", target).Replace(tmpl))
	}
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
