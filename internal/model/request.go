package model

// SignupRequest is the body of POST /signup (JSON or urlencoded form)
type SignupRequest struct {
	Username string `json:"username" form:"username" binding:"required,max=64"`
	Email    string `json:"email" form:"email" binding:"required,email,max=254"`
	Password string `json:"password" form:"password" binding:"required,max=72"` // counts runes; Signup enforces the 72-byte bcrypt limit
}

// LoginRequest is the body of POST /login
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// BulkUsersRequest carries the user IDs selected on the admin page.
type BulkUsersRequest struct {
	SelectedUsers []string `json:"selectedUsers" form:"selectedUsers" binding:"required,min=1,dive,required"`
}

// CallAPIRequest is the body of POST /callAPI
type CallAPIRequest struct {
	Input string `json:"input" form:"input" binding:"required,max=2048"`
}

// BulkFailure describes one identifier a bulk admin operation could not apply.
type BulkFailure struct {
	ID      string `json:"id"`
	Kind    string `json:"error"`
	Message string `json:"message"`
}

// BulkResult reports the per-identifier outcome of a bulk admin operation
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

// Complete reports whether every identifier was applied.
func (r *BulkResult) Complete() bool {
	return len(r.Failed) == 0
}
