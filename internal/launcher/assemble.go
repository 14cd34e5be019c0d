package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/capsulerun/capsule/internal/command"
	"github.com/capsulerun/capsule/internal/manifest"
)

// buildResult is everything needed to start the child process.
type buildResult struct {
	Program string
	Args    []string
	Env     []string
	Dir     string
	AppID   string
}

// assembleCommand implements spec.md §4.6 end to end, folding every
// piece through the caplet chain at the point §4.8 says it applies
// (build_classpath, build_jvm_args, build_system_properties, build_args).
func assembleCommand(
	rm resolvedManifest,
	cfg Config,
	archivePath string,
	cache cacheResult,
	runtimeHome string,
	deps resolvedDeps,
	agents []command.AgentSpec,
	ep entrypoint,
	mainArtifactPath string,
	appID string,
	pid int,
) (buildResult, error) {
	capsuleDir := ""
	if cache.AppDir != "" {
		capsuleDir = cache.AppDir
	}
	vars := command.Vars{CapsuleDir: capsuleDir, CapsuleJar: archivePath, JavaHome: runtimeHome}

	scriptRaw, hasScript := rm.get(manifest.Script)
	var program string
	if hasScript && scriptRaw != "" {
		if capsuleDir == "" {
			return buildResult{}, wrapExit(ExitAttributeMisuse, "attribute-misuse",
				fmt.Errorf("Script attribute set but this capsule was not extracted"))
		}
		scriptRel, err := command.SanitizeArchiveRelative(scriptRaw)
		if err != nil {
			return buildResult{}, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
		}
		scriptPath := filepath.Join(capsuleDir, filepath.FromSlash(scriptRel))
		if err := os.Chmod(scriptPath, 0o755); err != nil && !os.IsNotExist(err) {
			return buildResult{}, wrapExit(ExitCacheIOFailure, "cache-io-failure", err)
		}
		program = command.ResolveProgram(scriptPath, runtimeHome)
	} else {
		program = command.ResolveProgram("", runtimeHome)
	}

	jvmArgs, err := buildJVMArgs(rm, cfg, vars)
	if err != nil {
		return buildResult{}, err
	}
	jvmArgs = rm.chain.BuildJVMArgs(jvmArgs)

	bootArgs, libProp, err := buildBootClasspath(rm, vars)
	if err != nil {
		return buildResult{}, err
	}

	sysProps, err := buildSystemProperties(rm, cfg, appID, archivePath, capsuleDir, pid, libProp, vars)
	if err != nil {
		return buildResult{}, err
	}
	sysProps = rm.chain.BuildSystemProperties(sysProps)

	classPath, err := buildClassPath(rm, cfg, archivePath, capsuleDir, mainArtifactPath, deps, vars)
	if err != nil {
		return buildResult{}, err
	}
	classPath = rm.chain.BuildClassPath(classPath)

	appArgsList, err := command.ExpandList(rm.list(manifest.Args), vars)
	if err != nil {
		return buildResult{}, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}
	appArgsList = rm.chain.BuildArgs(appArgsList)

	args, err := command.Build(command.Input{
		JVMArgs:           jvmArgs,
		BootClasspathArgs: bootArgs,
		SystemProperties:  sysProps,
		ClassPath:         classPath,
		Agents:            agents,
		MainClass:         ep.MainClass,
		MainJarPath:       ep.MainJarPath,
		AppArgs:           appArgsList,
		HostTrailingArgs:  cfg.AppArgs,
	})
	if err != nil {
		return buildResult{}, wrapExit(ExitMissingEntrypoint, "missing-entrypoint", err)
	}

	envVars, err := command.ExpandMap(rm.getMap(manifest.EnvironmentVariables, ""), vars)
	if err != nil {
		return buildResult{}, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}
	envVars = withCapsuleEnv(envVars, appID, archivePath, capsuleDir)
	env := command.BuildEnvironment(os.Environ(), envVars, runtimeHome)

	return buildResult{Program: program, Args: args, Env: env, Dir: capsuleDir, AppID: appID}, nil
}

// withCapsuleEnv adds the fixed CAPSULE_* outputs spec.md §6 names, as
// forced overwrites so a manifest-declared Environment-Variables entry
// can never shadow them.
func withCapsuleEnv(vars map[string]string, appID, archivePath, capsuleDir string) map[string]string {
	out := make(map[string]string, len(vars)+3)
	for k, v := range vars {
		out[k] = v
	}
	out["CAPSULE_APP:"] = appID
	out["CAPSULE_JAR:"] = archivePath
	if capsuleDir != "" {
		out["CAPSULE_DIR:"] = capsuleDir
	}
	return out
}

func buildJVMArgs(rm resolvedManifest, cfg Config, vars command.Vars) ([]string, error) {
	manifestArgs, err := command.ExpandList(rm.list(manifest.JVMArgs), vars)
	if err != nil {
		return nil, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}
	return command.MergeJVMArgs(manifestArgs, cfg.ExtraJVMArgs), nil
}

func buildBootClasspath(rm resolvedManifest, vars command.Vars) ([]string, [2]string, error) {
	plain, err := command.ExpandList(rm.list(manifest.BootClassPath), vars)
	if err != nil {
		return nil, [2]string{}, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}
	prepend, err := command.ExpandList(rm.list(manifest.BootClassPathP), vars)
	if err != nil {
		return nil, [2]string{}, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}
	appendList, err := command.ExpandList(rm.list(manifest.BootClassPathA), vars)
	if err != nil {
		return nil, [2]string{}, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}
	args := command.BuildBootClasspathArgs(plain, prepend, appendList)

	libPrepend, err := command.ExpandList(rm.list(manifest.LibraryPathP), vars)
	if err != nil {
		return nil, [2]string{}, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}
	libAppend, err := command.ExpandList(rm.list(manifest.LibraryPathA), vars)
	if err != nil {
		return nil, [2]string{}, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}
	key, value, ok := command.BuildLibraryPathProperty(libPrepend, libAppend)
	var libProp [2]string
	if ok {
		libProp = [2]string{key, value}
	}
	return args, libProp, nil
}

func buildSystemProperties(rm resolvedManifest, cfg Config, appID, archivePath, capsuleDir string, pid int, libProp [2]string, vars command.Vars) (map[string]string, error) {
	manifestProps, err := command.ExpandMap(rm.getMap(manifest.SystemProperties, ""), vars)
	if err != nil {
		return nil, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}
	if libProp[0] != "" {
		manifestProps[libProp[0]] = libProp[1]
	}

	securityManager, _ := rm.get(manifest.SecurityManager)

	policy, err := command.ExpandList(rm.list(manifest.SecurityPolicy), vars)
	if err != nil {
		return nil, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}
	policyAppend, err := command.ExpandList(rm.list(manifest.SecurityPolicyA), vars)
	if err != nil {
		return nil, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}
	policy = append(policy, policyAppend...)
	if len(policy) > 0 {
		manifestProps["java.security.manager"] = securityManager
		manifestProps["java.security.policy"] = command.JoinClassPath(policy)
	}

	derived := command.DerivedProperties(appID, archivePath, capsuleDir, pid, securityManager)

	return command.MergeSystemProperties(manifestProps, cfg.HostDefines, derived), nil
}

func buildClassPath(rm resolvedManifest, cfg Config, archivePath, capsuleDir, mainJarPath string, deps resolvedDeps, vars command.Vars) ([]string, error) {
	includeArchive := true
	if raw, ok := rm.get(manifest.CapsuleInClassPath); ok {
		if v, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			includeArchive = v
		}
	}
	if !includeArchive && capsuleDir == "" {
		return nil, wrapExit(ExitAttributeMisuse, "attribute-misuse",
			fmt.Errorf("Capsule-In-Class-Path=false with extraction disabled leaves no way to load the application's own classes"))
	}

	rawAppCP := rm.list(manifest.AppClassPath)
	sanitized, err := command.SanitizeArchiveRelativeList(rawAppCP)
	if err != nil {
		return nil, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}
	appClassPath, err := command.ExpandList(sanitized, vars)
	if err != nil {
		return nil, wrapExit(ExitAttributeMisuse, "attribute-misuse", err)
	}
	if capsuleDir != "" {
		for i, p := range appClassPath {
			if !filepath.IsAbs(p) {
				appClassPath[i] = filepath.Join(capsuleDir, filepath.FromSlash(p))
			}
		}
	}

	var defaultInCache []string
	if capsuleDir != "" {
		defaultInCache = defaultInCacheJars(capsuleDir)
	}

	return command.BuildClassPath(archivePath, includeArchive, mainJarPath, appClassPath, defaultInCache, deps.ClassPathJars), nil
}

// defaultInCacheJars lists the jars directly under an extracted app
// cache's root, the capsule's own default classpath contribution when
// no explicit App-Class-Path is declared.
func defaultInCacheJars(capsuleDir string) []string {
	entries, err := os.ReadDir(capsuleDir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".jar") {
			out = append(out, filepath.Join(capsuleDir, e.Name()))
		}
	}
	return out
}
