// Package kerberos provides the Kerberos AuthProvider implementation for virtd.
//
// The Provider type implements the auth.AuthProvider interface and manages:
//   - Keytab and krb5.conf loading with environment variable overrides
//   - Hot-reload capability for keytab rotation
//   - SPNEGO/Kerberos token detection for the auth provider chain
//
// This package does NOT contain the SASL/GSSAPI wire sub-machine (see
// internal/auth/gssapi and internal/rpcd/session) or the AP-REQ verification
// logic. internal/auth/gssapi.Krb5Verifier uses the Provider's keytab and
// krb5.conf state to verify client tickets during AUTH_SASL_START/STEP.
//
// Configuration is defined in pkg/config.KerberosConfig to avoid circular imports.
// This package accepts *config.KerberosConfig as constructor parameter.
//
// References:
//   - RFC 4121: The Kerberos Version 5 GSS-API Mechanism
//   - RFC 4422: Simple Authentication and Security Layer (SASL)
package kerberos
