// Package model defines the entities persisted by CineShelf.
//
// A User owns zero or more Movies. The User is the aggregate root: deleting a
// user deletes every movie that references it through OwnerID.
package model

// User is a person maintaining a movie collection.
//
// ID is assigned by the store on insert and is zero for an unsaved user.
type User struct {
	ID   int64  `json:"id"   db:"id"`
	Name string `json:"name" db:"name"`
}

func (u User) String() string {
	return u.Name
}
