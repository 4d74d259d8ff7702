// Package avatar turns a loaded character into the hero avatar: it resolves
// the rig's bones, runs the idle and head-tracking tweens, and owns the
// viewport lifecycle from mount to teardown.
package avatar

import (
	"strings"

	"github.com/normanking/heroavatar/internal/scene"
)

// Role is a logical bone the controller animates.
type Role int

const (
	RoleHead Role = iota
	RoleLeftHand
	RoleRightHand
	RoleLeftShoulder
	RoleRightShoulder
	RoleLeftArm
	RoleRightArm
	RoleLeftForeArm
	RoleRightForeArm

	roleCount
)

var roleNames = [roleCount]string{
	RoleHead:          "Head",
	RoleLeftHand:      "LeftHand",
	RoleRightHand:     "RightHand",
	RoleLeftShoulder:  "LeftShoulder",
	RoleRightShoulder: "RightShoulder",
	RoleLeftArm:       "LeftArm",
	RoleRightArm:      "RightArm",
	RoleLeftForeArm:   "LeftForeArm",
	RoleRightForeArm:  "RightForeArm",
}

func (r Role) String() string {
	if r < 0 || r >= roleCount {
		return "Unknown"
	}
	return roleNames[r]
}

// Roles lists every role in declaration order.
func Roles() []Role {
	out := make([]Role, roleCount)
	for i := range out {
		out[i] = Role(i)
	}
	return out
}

// Bone groups used by the idle loops. Breathing order sets the stagger.
var (
	BreathingRoles = []Role{
		RoleLeftShoulder, RoleLeftArm, RoleLeftForeArm,
		RoleRightShoulder, RoleRightArm, RoleRightForeArm,
	}
	HandRoles = []Role{RoleLeftHand, RoleRightHand}
)

const mixamoPrefix = "mixamorig:"

// Aliases returns the accepted node names for r, most preferred first.
func Aliases(r Role) []string {
	name := r.String()
	return []string{name, strings.ToLower(name), mixamoPrefix + name}
}

// Skeleton maps roles to nodes of one loaded graph. A nil entry is absent.
type Skeleton struct {
	bones [roleCount]*scene.Node
}

// ResolveSkeleton looks every role up once. Missing bones are not an error.
func ResolveSkeleton(g *scene.Graph) Skeleton {
	var s Skeleton
	for r := Role(0); r < roleCount; r++ {
		for _, alias := range Aliases(r) {
			if n := g.Find(alias); n != nil {
				s.bones[r] = n
				break
			}
		}
	}
	return s
}

// Bone returns the node for r, or nil when absent.
func (s Skeleton) Bone(r Role) *scene.Node {
	if r < 0 || r >= roleCount {
		return nil
	}
	return s.bones[r]
}

// Has reports whether every given role resolved.
func (s Skeleton) Has(roles ...Role) bool {
	for _, r := range roles {
		if s.Bone(r) == nil {
			return false
		}
	}
	return true
}

// Nodes returns the nodes for roles, skipping absent ones.
func (s Skeleton) Nodes(roles ...Role) []*scene.Node {
	out := make([]*scene.Node, 0, len(roles))
	for _, r := range roles {
		if n := s.Bone(r); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Missing lists the roles that did not resolve.
func (s Skeleton) Missing() []Role {
	var out []Role
	for r := Role(0); r < roleCount; r++ {
		if s.bones[r] == nil {
			out = append(out, r)
		}
	}
	return out
}
