package store

type Conversation struct {
	ID     int32
	UID    string
	UserID int32
	Title  string
	// Summary is the rolling summary of truncated older history, refreshed by
	// the chat pipeline.
	Summary string
	// Context is a free-form JSON blob.
	Context   string
	CreatedTs int64
	UpdatedTs int64
}

type FindConversation struct {
	ID     *int32
	UID    *string
	UserID *int32
}

type UpdateConversation struct {
	ID        int32
	Title     *string
	Summary   *string
	Context   *string
	UpdatedTs *int64
}

type DeleteConversation struct {
	ID int32
}
