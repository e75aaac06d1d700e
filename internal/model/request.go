package model

// CollegeRequest is a user's ask to add a college to the catalog. It is
// mailed to an administrator and never stored.
type CollegeRequest struct {
	Name     string `json:"name" binding:"required"`
	City     string `json:"city" binding:"required"`
	State    string `json:"state" binding:"required"`
	NIRFRank string `json:"nirfRank"`
	Rank     string `json:"rank"`
}
