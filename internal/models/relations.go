package models

// Entity names used in errors, cache keys and metric labels.
const (
	EntityUser     = "user"
	EntityCategory = "category"
	EntityTag      = "tag"
	EntityPostTag  = "post_tag"
	EntityPost     = "post"
	EntityComment  = "comment"
)

// RelationKind describes the cardinality of a relationship.
type RelationKind string

const (
	// BelongsTo is a local foreign key pointing at one row of the target.
	BelongsTo RelationKind = "belongs_to"
	// HasMany is the inverse side of a BelongsTo.
	HasMany RelationKind = "has_many"
	// ManyToMany goes through a join entity.
	ManyToMany RelationKind = "many_to_many"
)

// Relation declares how two entities are linked: From.LocalField = To.ForeignField,
// or through a join entity for ManyToMany.
type Relation struct {
	// Name is the GORM association field on the From entity, when one exists.
	Name         string
	Kind         RelationKind
	From         string
	LocalField   string
	To           string
	ForeignField string
	Through      string
	// Enforced is false when the storage layer carries no foreign key for the link.
	Enforced bool
}

var relationships = []Relation{
	{Name: "User", Kind: BelongsTo, From: EntityPost, LocalField: "user_id", To: EntityUser, ForeignField: "id", Enforced: true},
	{Name: "Category", Kind: BelongsTo, From: EntityPost, LocalField: "category_id", To: EntityCategory, ForeignField: "id", Enforced: true},
	{Kind: ManyToMany, From: EntityPost, LocalField: "id", To: EntityTag, ForeignField: "id", Through: EntityPostTag, Enforced: true},
	{Name: "Post", Kind: BelongsTo, From: EntityPostTag, LocalField: "post_id", To: EntityPost, ForeignField: "id", Enforced: true},
	{Name: "Tag", Kind: BelongsTo, From: EntityPostTag, LocalField: "tag_id", To: EntityTag, ForeignField: "id", Enforced: true},
	{Name: "User", Kind: BelongsTo, From: EntityComment, LocalField: "user_id", To: EntityUser, ForeignField: "id", Enforced: true},
	{Name: "Parent", Kind: BelongsTo, From: EntityComment, LocalField: "parent_id", To: EntityComment, ForeignField: "id", Enforced: true},
	// Known integrity gap: comments.post_id has no foreign key.
	{Kind: BelongsTo, From: EntityComment, LocalField: "post_id", To: EntityPost, ForeignField: "id", Enforced: false},
	{Kind: HasMany, From: EntityUser, LocalField: "id", To: EntityPost, ForeignField: "user_id"},
	{Kind: HasMany, From: EntityUser, LocalField: "id", To: EntityComment, ForeignField: "user_id"},
	{Kind: HasMany, From: EntityCategory, LocalField: "id", To: EntityPost, ForeignField: "category_id"},
	{Kind: HasMany, From: EntityPost, LocalField: "id", To: EntityComment, ForeignField: "post_id"},
	{Kind: HasMany, From: EntityComment, LocalField: "id", To: EntityComment, ForeignField: "parent_id"},
}

// Relationships returns a copy of every declared relationship.
func Relationships() []Relation {
	out := make([]Relation, len(relationships))
	copy(out, relationships)
	return out
}

// RelationsFrom returns the relationships whose From side is the given entity.
func RelationsFrom(entity string) []Relation {
	var out []Relation
	for _, r := range relationships {
		if r.From == entity {
			out = append(out, r)
		}
	}
	return out
}
