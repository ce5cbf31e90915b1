package domain

// Role is the access level of an account. Ranks form a total order here,
// but comparisons go through the rank table so adding a role means adding
// one entry instead of sprinkling numeric comparisons around.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCollector Role = "collector"
)

var roleRank = map[Role]int{
	RoleCollector: 1,
	RoleAdmin:     2,
}

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// HasPermission reports whether actor covers everything required may do.
// Unknown roles never gain access.
func HasPermission(actor, required Role) bool {
	ar, ok := roleRank[actor]
	if !ok {
		return false
	}
	rr, ok := roleRank[required]
	if !ok {
		return false
	}
	return ar >= rr
}
