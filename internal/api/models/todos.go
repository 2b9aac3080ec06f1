package models

// Todo is the API representation of a todo item.
type Todo struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Priority  string    `json:"priority"`
	SortOrder int       `json:"sort_order"`
	CreatedAt Timestamp `json:"created_at"`
}

// TodoCreateRequest is the body of todo creation.
type TodoCreateRequest struct {
	Title    string `json:"title"`
	Priority string `json:"priority"`
}

// TodoUpdateRequest is the body of a partial todo update; nil fields are
// left unchanged.
type TodoUpdateRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
	Priority  *string `json:"priority"`
	SortOrder *int    `json:"sort_order"`
}

// TodoReorderRequest is the body of the batch reorder operation.
type TodoReorderRequest struct {
	Items []TodoReorderItem `json:"items"`
}

// TodoReorderItem assigns a new sort order to one todo.
type TodoReorderItem struct {
	ID        int64 `json:"id"`
	SortOrder int   `json:"sort_order"`
}
