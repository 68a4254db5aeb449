package system

import (
	"time"

	"github.com/barrage/server/internal/component"
	"github.com/barrage/server/internal/core/ecs"
	coresys "github.com/barrage/server/internal/core/system"
	"github.com/barrage/server/internal/world"
)

// Integrate advances one entity by dt seconds: rates first, then rotation,
// then translation along the post-rotation forward axis. The order is
// observable in curved trajectories and must not change.
func Integrate(t *component.Transform, k *component.Kinematics, dt float32) {
	k.LinearSpeed += k.LinearAccel * dt
	k.AngularSpeed += k.AngularAccel * dt
	t.RotateLocal(k.AngularSpeed * dt)
	t.Position = t.Position.Add(t.Forward().Mul(k.LinearSpeed * dt))
}

// KinematicsSystem integrates every entity that has both a transform and
// kinematics. Phase 2 (Kinematics).
type KinematicsSystem struct {
	state *world.State
}

func NewKinematicsSystem(ws *world.State) *KinematicsSystem {
	return &KinematicsSystem{state: ws}
}

func (s *KinematicsSystem) Phase() coresys.Phase { return coresys.PhaseKinematics }

func (s *KinematicsSystem) Update(dt time.Duration) {
	sec := coresys.Seconds(dt)
	ecs.Each2(s.state.Transforms, s.state.Kinematics, func(_ ecs.EntityID, t *component.Transform, k *component.Kinematics) {
		Integrate(t, k, sec)
	})
}
