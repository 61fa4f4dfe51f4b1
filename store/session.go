package store

// Session is a server-side login session record. The session ID is embedded
// in the signed cookie token; deleting the row revokes the login.
type Session struct {
	ID        string
	UserID    int32
	CreatedTs int64
	ExpiresTs int64
}

type FindSession struct {
	ID     *string
	UserID *int32
}

type DeleteSession struct {
	ID string
}
