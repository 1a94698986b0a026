package world

// Observer receives kill events synchronously from the combat loop.
type Observer interface {
	OnKill(killer, victim string)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(killer, victim string)

func (f ObserverFunc) OnKill(killer, victim string) { f(killer, victim) }

// Resolver applies the combat rules. Its observer list is fixed at
// construction and only read afterwards.
type Resolver struct {
	observers []Observer
}

func NewResolver(observers ...Observer) *Resolver {
	return &Resolver{observers: append([]Observer(nil), observers...)}
}

// RollDie returns a uniform integer in [1,6].
func RollDie(rng Rand) int {
	return rng.Intn(6) + 1
}

// Resolve runs one attack. Nothing happens unless both sides are alive and
// the kind pair is legal. The defender dies only when the attack roll is
// strictly higher than the defense roll; observers are told in order.
func (r *Resolver) Resolve(attacker, defender *Entity, rng Rand) bool {
	if !CanAttack(attacker.Kind(), defender.Kind()) {
		return false
	}

	if !attacker.IsAlive() || !defender.IsAlive() {
		return false
	}

	attack := RollDie(rng)
	defense := RollDie(rng)
	if attack <= defense {
		return false
	}

	if !defender.Kill() {
		return false
	}

	r.notify(attacker.Name(), defender.Name())
	return true
}

func (r *Resolver) notify(killer, victim string) {
	for _, o := range r.observers {
		o.OnKill(killer, victim)
	}
}

// Engage is one round of mutual combat: a strikes first, and b answers with
// fresh rolls only if both are still standing.
func (r *Resolver) Engage(a, b *Entity, rng Rand) (kills int) {
	if r.Resolve(a, b, rng) {
		kills++
	}

	if a.IsAlive() && b.IsAlive() {
		if r.Resolve(b, a, rng) {
			kills++
		}
	}

	return kills
}

// InRange reports whether a and b are within both of their kill distances.
func InRange(a, b *Entity) bool {
	d := a.DistanceToEntity(b)
	return d <= float64(a.Kind().KillDistance()) && d <= float64(b.Kind().KillDistance())
}

// CombatStats summarises one combat pass.
type CombatStats struct {
	Pairs   int
	Kills   int
	Removed int
}

// CombatTick checks every unordered pair of alive entities and engages the
// ones in range, then sweeps the dead out of the registry in the same lock hold.
func (r *Resolver) CombatTick(reg *Registry, rng Rand) CombatStats {
	var stats CombatStats

	stats.Removed = reg.Pass(func(entities []*Entity) {
		for i := 0; i < len(entities); i++ {
			if !entities[i].IsAlive() {
				continue
			}

			for j := i + 1; j < len(entities); j++ {
				if !entities[j].IsAlive() {
					continue
				}

				if !InRange(entities[i], entities[j]) {
					continue
				}

				stats.Pairs++
				stats.Kills += r.Engage(entities[i], entities[j], rng)

				// i may have died answering j
				if !entities[i].IsAlive() {
					break
				}
			}
		}
	})

	return stats
}

// Skirmish is a single free-for-all round with a caller-chosen range that
// ignores kill distances. Every ordered pair gets one attack; kind legality
// still applies. Dead entities are swept afterwards.
func (r *Resolver) Skirmish(reg *Registry, rangeLimit float64, rng Rand) CombatStats {
	var stats CombatStats

	stats.Removed = reg.Pass(func(entities []*Entity) {
		for _, a := range entities {
			for _, b := range entities {
				if a == b || !a.IsAlive() || !b.IsAlive() {
					continue
				}

				if a.DistanceToEntity(b) > rangeLimit {
					continue
				}

				stats.Pairs++
				if r.Resolve(a, b, rng) {
					stats.Kills++
				}
			}
		}
	})

	return stats
}
