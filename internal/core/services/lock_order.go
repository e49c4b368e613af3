package services

// lockOrder returns the two user IDs in the order their wallets must be locked.
//
// The order is byte-wise lexicographic on the user ID and ignores which side is the
// source, so concurrent transfers between the same pair always request row locks in
// the same sequence and cannot wait on each other in a cycle. Changing this function
// changes lock acquisition for every in-flight transfer; keep it stable.
func lockOrder(a, b string) (first, second string) {
	if a <= b {
		return a, b
	}
	return b, a
}
