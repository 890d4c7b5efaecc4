package room

// message types
const (
	TypeCreateTable  = "createTable"
	TypeJoinTable    = "joinTable"
	TypeAddBot       = "addBot"
	TypeSubmitAction = "submitAction"
	TypeStartNewHand = "startNewHand"
)

// MessageIn is a request received from a connected client
type MessageIn struct {
	Type        string `json:"type"`
	TableID     string `json:"tableId"`
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
	SeatID      string `json:"seatId"`
	Action      string `json:"action"`
	Amount      int    `json:"amount"`
	Policy      string `json:"policy"`
	Context     string `json:"context"`
}
