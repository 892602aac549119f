package unit

// Unit factors express a unit in terms of its group's base unit
// (kilograms for weight, liters for volume). Factors are decimal strings
// backed by NUMERIC columns.

type Group struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Units []Unit `json:"units"`
}

type Unit struct {
	ID           int64  `json:"id"`
	UnitGroupID  int64  `json:"unitGroupId"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Factor       string `json:"factor"`
}
