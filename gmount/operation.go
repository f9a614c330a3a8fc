// Package gmount implements Operation, a user-interaction property bag for mount operations, modeled on
// gio/gmountoperation.c. spec.md §1 places this module OUT OF SCOPE for behavior, keeping it only as an external
// collaborator type so producers built on [github.com/Izzette/go-gtask/gtask] have something realistic to return
// results about; its virtual "ask password / ask question / show processes / aborted" hooks are reduced here to
// plain function-valued struct fields rather than a signal system, since gtask itself never calls into this
// package.
package gmount

import "sync"

// PasswordSave enumerates whether a requested password/credential should be remembered, mirroring
// GPasswordSave (gio/gioenums.h) as consumed by gmountoperation.c's "password_save" property.
type PasswordSave int

const (
	// PasswordSaveNever means the credential must never be remembered.
	PasswordSaveNever PasswordSave = iota
	// PasswordSaveForSession means the credential may be remembered for the current session only.
	PasswordSaveForSession
	// PasswordSavePermanently means the credential may be remembered indefinitely.
	PasswordSavePermanently
)

// Result enumerates the outcome of an interactive request, mirroring GMountOperationResult.
type Result int

const (
	// ResultHandled means the operation's request was answered and the caller may proceed.
	ResultHandled Result = iota
	// ResultAborted means the user aborted the request.
	ResultAborted
	// ResultUnhandled means nothing answered the request; gmountoperation.c's default "aborted" handler (the
	// class's base ask_password/ask_question/show_processes implementations) replies with this.
	ResultUnhandled
)

// AskPasswordFlags mirrors GAskPasswordFlags, indicating which credential fields the caller should prompt for.
type AskPasswordFlags int

const (
	AskPasswordNeedUsername AskPasswordFlags = 1 << iota
	AskPasswordNeedDomain
	AskPasswordNeedPassword
	AskPasswordAnonymousSupported
	AskPasswordSavingSupported
	AskPasswordTCryptSupported
	AskPasswordTCryptHiddenVolumeSupported
	AskPasswordTCryptSystemVolumeSupported
	AskPasswordTCryptJoinedVolumeSupported
)

// Operation is a property bag gathering the credentials and choices a mount operation gathers interactively,
// grounded on GMountOperationPrivate's username/password/domain/anonymous/password_save/choice/is_tcrypt_*/pim
// fields. All fields are guarded by a single mutex since, unlike gtask.Task, there is no producer/consumer split to
// exploit for lock-free access — a mount operation is a small, short-lived, single-owner object in practice.
type Operation struct {
	mu sync.Mutex

	username     string
	password     string
	domain       string
	anonymous    bool
	passwordSave PasswordSave
	choice       int

	isTCryptHiddenVolume bool
	isTCryptSystemVolume bool
	pim                  uint

	// AskPassword is invoked when the operation needs to prompt for credentials. It mirrors the
	// GMountOperationClass::ask_password virtual, reduced to a plain hook since Go has no signal system. A nil hook
	// behaves like gmountoperation.c's base implementation: it replies Unhandled.
	AskPassword func(op *Operation, message, defaultUser, defaultDomain string, flags AskPasswordFlags) Result

	// AskQuestion is invoked when the operation needs the user to choose among choices. A nil hook replies Unhandled.
	AskQuestion func(op *Operation, message string, choices []string) Result

	// ShowProcesses is invoked to inform the user which processes are blocking an unmount/eject, offering choices
	// for how to proceed (e.g. "Cancel", "Force unmount"). A nil hook replies Unhandled.
	ShowProcesses func(op *Operation, message string, processes []int, choices []string) Result

	// Aborted is invoked when the user aborts the operation out-of-band (e.g. cancels a dialog).
	Aborted func(op *Operation)
}

// New creates an empty Operation with PasswordSave defaulting to PasswordSaveNever, mirroring
// g_mount_operation_init's GObject property defaults.
func New() *Operation {
	return &Operation{passwordSave: PasswordSaveNever}
}

// Username returns the currently stored username.
func (o *Operation) Username() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.username
}

// SetUsername sets the username to use for the next credential request.
func (o *Operation) SetUsername(username string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.username = username
}

// Password returns the currently stored password.
func (o *Operation) Password() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.password
}

// SetPassword sets the password to use for the next credential request.
func (o *Operation) SetPassword(password string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.password = password
}

// Domain returns the currently stored domain.
func (o *Operation) Domain() string {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.domain
}

// SetDomain sets the domain to use for the next credential request.
func (o *Operation) SetDomain(domain string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.domain = domain
}

// Anonymous reports whether the operation should proceed anonymously, skipping credentials entirely.
func (o *Operation) Anonymous() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.anonymous
}

// SetAnonymous sets whether the operation should proceed anonymously.
func (o *Operation) SetAnonymous(anonymous bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.anonymous = anonymous
}

// PasswordSave returns the current password-retention policy.
func (o *Operation) PasswordSave() PasswordSave {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.passwordSave
}

// SetPasswordSave sets the password-retention policy.
func (o *Operation) SetPasswordSave(save PasswordSave) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.passwordSave = save
}

// Choice returns the index of the choice most recently selected in response to AskQuestion/ShowProcesses.
func (o *Operation) Choice() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.choice
}

// SetChoice sets the index of the selected choice.
func (o *Operation) SetChoice(choice int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.choice = choice
}

// IsTCryptHiddenVolume reports whether the volume being unlocked is a TCrypt hidden volume.
func (o *Operation) IsTCryptHiddenVolume() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.isTCryptHiddenVolume
}

// SetIsTCryptHiddenVolume sets whether the volume being unlocked is a TCrypt hidden volume.
func (o *Operation) SetIsTCryptHiddenVolume(hidden bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.isTCryptHiddenVolume = hidden
}

// IsTCryptSystemVolume reports whether the volume being unlocked is a TCrypt system volume.
func (o *Operation) IsTCryptSystemVolume() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.isTCryptSystemVolume
}

// SetIsTCryptSystemVolume sets whether the volume being unlocked is a TCrypt system volume.
func (o *Operation) SetIsTCryptSystemVolume(system bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.isTCryptSystemVolume = system
}

// PIM returns the TCrypt personal iteration multiplier, or 0 if unset.
func (o *Operation) PIM() uint {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.pim
}

// SetPIM sets the TCrypt personal iteration multiplier.
func (o *Operation) SetPIM(pim uint) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pim = pim
}

// RequestPassword invokes the AskPassword hook, or returns ResultUnhandled if none is set, mirroring the base-class
// virtuals in gmountoperation.c, which simply reply G_MOUNT_OPERATION_UNHANDLED.
func (o *Operation) RequestPassword(message, defaultUser, defaultDomain string, flags AskPasswordFlags) Result {
	if o.AskPassword == nil {
		return ResultUnhandled
	}

	return o.AskPassword(o, message, defaultUser, defaultDomain, flags)
}

// RequestQuestion invokes the AskQuestion hook, or returns ResultUnhandled if none is set.
func (o *Operation) RequestQuestion(message string, choices []string) Result {
	if o.AskQuestion == nil {
		return ResultUnhandled
	}

	return o.AskQuestion(o, message, choices)
}

// RequestShowProcesses invokes the ShowProcesses hook, or returns ResultUnhandled if none is set.
func (o *Operation) RequestShowProcesses(message string, processes []int, choices []string) Result {
	if o.ShowProcesses == nil {
		return ResultUnhandled
	}

	return o.ShowProcesses(o, message, processes, choices)
}

// Abort invokes the Aborted hook, if set, mirroring g_mount_operation_reply(op, G_MOUNT_OPERATION_ABORTED)'s signal
// emission.
func (o *Operation) Abort() {
	if o.Aborted != nil {
		o.Aborted(o)
	}
}
