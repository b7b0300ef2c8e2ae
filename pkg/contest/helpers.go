package contest

import "github.com/jwebster45206/branch-engine/pkg/dice"

// Modifiers exposes the total check bonus a party has for a skill.
type Modifiers interface {
	SkillModifier(skill string) int
}

// Contender pairs a named party with its modifiers and roll mode.
type Contender struct {
	Name      string
	Mods      Modifiers
	Advantage dice.Advantage
}

// BestSkill returns whichever of the given skills has the higher modifier.
// Ties keep the first skill.
func BestSkill(m Modifiers, skills ...string) (string, int) {
	if len(skills) == 0 {
		return "", 0
	}
	best, bestMod := skills[0], m.SkillModifier(skills[0])
	for _, s := range skills[1:] {
		if mod := m.SkillModifier(s); mod > bestMod {
			best, bestMod = s, mod
		}
	}
	return best, bestMod
}

func participant(c Contender, skills ...string) Participant {
	skill, mod := BestSkill(c.Mods, skills...)
	return Participant{Name: c.Name, Skill: skill, Modifier: mod, Advantage: c.Advantage}
}

// Grapple: attacker athletics against the defender's better of athletics
// and acrobatics.
func Grapple(roller *dice.Roller, attacker, defender Contender) Result {
	return Resolve(roller,
		participant(attacker, "athletics"),
		participant(defender, "athletics", "acrobatics"))
}

// EscapeGrapple: the grappled party uses athletics or acrobatics against the
// grappler's athletics.
func EscapeGrapple(roller *dice.Roller, escapee, grappler Contender) Result {
	return Resolve(roller,
		participant(escapee, "athletics", "acrobatics"),
		participant(grappler, "athletics"))
}

// Shove: attacker athletics against the defender's better of athletics and
// acrobatics.
func Shove(roller *dice.Roller, attacker, defender Contender) Result {
	return Resolve(roller,
		participant(attacker, "athletics"),
		participant(defender, "athletics", "acrobatics"))
}

// StealthVsPerception: the hider's stealth against the observer's
// perception. A tie means the hider is spotted.
func StealthVsPerception(roller *dice.Roller, hider, observer Contender) Result {
	return Resolve(roller,
		participant(hider, "stealth"),
		participant(observer, "perception"))
}

// Social: persuasion, deception or intimidation against insight.
func Social(roller *dice.Roller, skill string, speaker, listener Contender) Result {
	return Resolve(roller,
		participant(speaker, skill),
		participant(listener, "insight"))
}
