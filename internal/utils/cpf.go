package utils

// CPF validation. A CPF is an 11-digit Brazilian national identifier whose
// last two digits are check digits, each computed as a weighted checksum
// over the preceding digits modulo 11 (a remainder of 10 maps to 0).
// Sequences of a single repeated digit pass the checksum arithmetic but
// are not valid identifiers and are rejected outright.

// NormalizeCPF strips every non-digit character from s, accepting both the
// punctuated form 000.000.000-00 and the bare 11 digits.
func NormalizeCPF(s string) string {
	out := make([]byte, 0, 11)
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// ValidCPF reports whether s is a valid CPF. Punctuation is ignored.
func ValidCPF(s string) bool {
	cpf := NormalizeCPF(s)
	if len(cpf) != 11 {
		return false
	}
	repeated := true
	for i := 1; i < 11; i++ {
		if cpf[i] != cpf[0] {
			repeated = false
			break
		}
	}
	if repeated {
		return false
	}
	if checkDigit(cpf, 9, 10) != int(cpf[9]-'0') {
		return false
	}
	return checkDigit(cpf, 10, 11) == int(cpf[10]-'0')
}

// checkDigit computes the check digit over the first n digits of cpf with
// the initial weight w, counting down to 2.
func checkDigit(cpf string, n, w int) int {
	sum := 0
	for i := 0; i < n; i++ {
		sum += int(cpf[i]-'0') * (w - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		rest = 0
	}
	return rest
}
