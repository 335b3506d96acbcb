package kami

// FindUIDByHotkey returns the UID slot currently registered to hotkey.
// UIDs are slots, not identities, so the answer is only valid for the
// metagraph snapshot it was derived from.
func FindUIDByHotkey(metagraph *SubnetMetagraph, hotkey string) (int, bool) {
	for uid, currHotkey := range metagraph.Hotkeys {
		if currHotkey == hotkey {
			return uid, true
		}
	}
	return 0, false
}
