package querypostgresql

type Input struct {
	QueryType string   `json:"queryType"`
	UserID    string   `json:"userId,omitempty"`
	PlanID    string   `json:"planId,omitempty"`
	RecipeIDs []string `json:"recipeIds,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}
