package auth

import "errors"

// defaultAuthMessage is shown for any auth failure without a specific translation
const defaultAuthMessage = "Възникна грешка при удостоверяване. Моля, опитайте отново."

// LocalizedMessage maps an auth error to the Bulgarian message shown to users.
// Internal error details never leak through this mapping.
func LocalizedMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "Грешен имейл или парола. Моля, опитайте отново."
	case errors.Is(err, ErrUserInactive):
		return "Този акаунт е деактивиран. Моля, свържете се с администратор."
	case errors.Is(err, ErrUserNotFound):
		return "Няма потребител с този имейл адрес."
	case errors.Is(err, ErrEmailAlreadyExists):
		return "Този имейл адрес вече се използва от друг акаунт."
	case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooWeak):
		return "Паролата е твърде слаба. Използвайте поне 6 символа."
	case errors.Is(err, ErrInvalidEmail):
		return "Невалиден имейл адрес."
	case errors.Is(err, ErrMissingPassword):
		return "Моля, въведете парола."
	case errors.Is(err, ErrMissingEmail):
		return "Моля, въведете имейл адрес."
	case errors.Is(err, ErrRequiresRecentLogin):
		return "Моля, влезте отново в акаунта си преди тази операция."
	case errors.Is(err, ErrSessionExpired), errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrExpiredToken), errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidClaims):
		return defaultAuthMessage
	default:
		return defaultAuthMessage
	}
}
