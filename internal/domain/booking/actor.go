package booking

// Actor は認証済みの操作者を表す
// 認証・資格情報の管理は外部の責務であり、ここでは識別子と権限フラグのみを扱う
type Actor struct {
	UserID  int64
	IsAdmin bool
}

// CanManage は指定予約への変更操作（キャンセル・閲覧）が許可されるかを返す
func (a Actor) CanManage(r *Reservation) bool {
	return a.IsAdmin || a.UserID == r.OwnerID
}
