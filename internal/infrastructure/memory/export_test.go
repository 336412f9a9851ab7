package memory

// LockedKeys claves con entrada viva en el locker.
func (l *Locker) LockedKeys() int { return l.size() }
