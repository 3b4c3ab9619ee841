package event

const UserSignedUpDestination string = "identity.user.signed_up"
const UserSignedUpConsumerNotification string = "identity.user.signed_up.notification"

type UserSignedUpMessage struct {
	UserID      int64  `json:"user_id,string"`
	PhoneNumber string `json:"phone_number"`
	SignedUpAt  int64  `json:"signed_up_at"`
}
