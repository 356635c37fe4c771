package model

import "time"

// FriendRequestStatus is the state of a friend request.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestDeclined FriendRequestStatus = "declined"
)

// FriendRequest is a directed request from one user to another.
// At most one pending request may exist between any unordered pair.
type FriendRequest struct {
	ID           int64               `json:"id"`
	FromUserID   int64               `json:"fromUserId"`
	FromUsername string              `json:"fromUsername"`
	ToUserID     int64               `json:"toUserId"`
	ToUsername   string              `json:"toUsername"`
	Status       FriendRequestStatus `json:"status"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// Friendship is the durable, undirected relation created when a request
// is accepted. Usernames are frozen at acceptance time.
type Friendship struct {
	ID            int64     `json:"id"`
	User1ID       int64     `json:"user1Id"`
	User1Username string    `json:"user1Username"`
	User2ID       int64     `json:"user2Id"`
	User2Username string    `json:"user2Username"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Friend is a friendship projected to "the other party" for a given user.
type Friend struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FriendshipID int64     `json:"friendshipId"`
	Since        time.Time `json:"since"`
}

// OtherParty returns the counterpart of userID in the friendship.
func (f *Friendship) OtherParty(userID int64) Friend {
	friend := Friend{FriendshipID: f.ID, Since: f.CreatedAt}
	if f.User1ID == userID {
		friend.ID = f.User2ID
		friend.Username = f.User2Username
	} else {
		friend.ID = f.User1ID
		friend.Username = f.User1Username
	}
	return friend
}
